package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/logger"
)

// RespondError writes err as a JSON error body. AppErrors are rendered with
// their code, message and field details; anything else is logged and
// reported as a generic internal error to avoid leaking details.
func RespondError(c *gin.Context, err error) {
	c.JSON(render(c, err))
}

// AbortWithError writes err like RespondError and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(render(c, err))
}

func render(c *gin.Context, err error) (int, *apperrors.AppError) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Named("http").Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		return appErr.StatusCode, appErr
	}

	logger.Named("http").Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	return apperrors.ErrInternalServer.StatusCode, apperrors.ErrInternalServer
}

// ErrorHandler returns a Gin middleware that converts errors attached to the
// context with c.Error into the same JSON error responses, unless a handler
// has already written a body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		RespondError(c, c.Errors.Last().Err)
	}
}

// Recovery turns panics into a logged 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Named("http").Errorw("panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.AbortWithStatusJSON(apperrors.ErrInternalServer.StatusCode, apperrors.ErrInternalServer)
	})
}
