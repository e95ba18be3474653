package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/pagination"
	"budgetbuddy/internal/uuid"
	"budgetbuddy/internal/validator"
)

// ErrorResponse documents the JSON error body.
type ErrorResponse struct {
	Error   string                 `json:"error" example:"VALIDATION_ERROR"`
	Message string                 `json:"message" example:"Request validation failed"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

// MessageResponse documents a bare success body.
type MessageResponse struct {
	Message string `json:"message" example:"plan_deleted"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a well-formed UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// bindJSON decodes and validates the request body into req.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return validator.Translate(err)
	}
	return nil
}

// bindPage reads page and page_size from the query string.
func bindPage(c *gin.Context) (pagination.PageRequest, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return page, validator.Translate(err)
	}
	return page, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}
