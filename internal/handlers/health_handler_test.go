package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetbuddy/internal/quote"
)

func TestHealthHandler_Health(t *testing.T) {
	cases := []struct {
		name   string
		ping   Pinger
		status int
		want   string
	}{
		{"no database check", nil, http.StatusOK, "ok"},
		{"database reachable", func(context.Context) error { return nil }, http.StatusOK, "ok"},
		{"database down", func(context.Context) error { return errors.New("refused") }, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tc.ping).Health)

			rec := doRequest(r, "GET", "/health", "")

			assertStatus(t, rec, tc.status)
			if got := parseJSON(t, rec)["status"]; got != tc.want {
				t.Errorf("expected status %q, got %v", tc.want, got)
			}
		})
	}
}

func TestQuoteHandler_GetQuote(t *testing.T) {
	r := gin.New()
	r.GET("/quotes/quote", NewQuoteHandler(staticQuotes{quote.Quote{Text: "Save first.", Source: quote.SourceFallback}}).GetQuote)

	rec := doRequest(r, "GET", "/quotes/quote", "")

	assertStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	if result["quote"] != "Save first." || result["source"] != quote.SourceFallback {
		t.Errorf("unexpected body %v", result)
	}
}
