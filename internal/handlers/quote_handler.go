package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbuddy/internal/quote"
)

// QuoteSource yields a quote and never fails.
type QuoteSource interface {
	Quote(ctx context.Context) quote.Quote
}

// QuoteHandler serves motivational quotes.
type QuoteHandler struct {
	quotes QuoteSource
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quotes QuoteSource) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// GetQuote returns a quote and where it came from.
// @Summary     Get a finance quote
// @Description Generated by Gemini, or drawn from a fixed list when generation fails
// @Tags        quotes
// @Produce     json
// @Success     200 {object} quote.Quote
// @Router      /quotes/quote [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	c.JSON(http.StatusOK, h.quotes.Quote(c.Request.Context()))
}
