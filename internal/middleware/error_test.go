package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetbuddy/internal/errors"
)

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRespondError(t *testing.T) {
	r := gin.New()
	r.GET("/app", func(c *gin.Context) {
		RespondError(c, apperrors.WithDetails(apperrors.ErrValidation, []apperrors.FieldError{
			{Field: "amount", Rule: "gt", Param: "0", Message: "amount must be greater than 0"},
		}))
	})
	r.GET("/wrapped", func(c *gin.Context) {
		RespondError(c, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")))
	})
	r.GET("/plain", func(c *gin.Context) {
		RespondError(c, errors.New("something broke"))
	})

	w := serve(r, http.MethodGet, "/app")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", code)
	}
	if !containsAll(w.Body.String(), `"details"`, `"field":"amount"`, `"rule":"gt"`) {
		t.Errorf("expected field details in body, got %s", w.Body.String())
	}

	w = serve(r, http.MethodGet, "/wrapped")
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "INTERNAL_ERROR" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
	if containsAll(w.Body.String(), "db down") {
		t.Error("internal error text leaked to client")
	}

	w = serve(r, http.MethodGet, "/plain")
	if w.Code != http.StatusInternalServerError || errorCode(t, w) != "INTERNAL_ERROR" {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/attached", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrCategoryInUse)
	})

	w := serve(r, http.MethodGet, "/attached")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "CATEGORY_IN_USE" {
		t.Errorf("expected CATEGORY_IN_USE, got %s", code)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/panic")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodOptions, "/x")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected incoming request ID to be reused, got %s", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
