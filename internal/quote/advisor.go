// Package quote serves a short motivational finance quote, generated by
// Gemini when available and drawn from a fixed list otherwise.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"budgetbuddy/internal/logger"
)

// Quote sources.
const (
	SourceGemini   = "gemini"
	SourceFallback = "fallback"
)

const prompt = `Give me a short, motivational quote about personal finance, budgeting, or saving money.
Make it inspiring and practical. Keep it under 120 characters.
Return ONLY the quote text, nothing else.`

// minQuoteLength is exclusive.
const minQuoteLength = 10

// Fallbacks are served when generation fails.
var Fallbacks = []string{
	"Take control of your finances, one expense at a time.",
	"The best time to start budgeting was yesterday. The second best time is now.",
	"A budget is telling your money where to go instead of wondering where it went.",
	"Financial freedom is available to those who learn about it and work for it.",
	"Don't tell your money where to go. Tell it where you want to go and let it take you there.",
	"Budgeting is not about restricting yourself, it's about empowering yourself.",
	"Every dollar you save today is a dollar you can invest in your future.",
	"Small amounts saved daily add up to huge investments over time.",
	"The goal isn't more money. The goal is living life on your terms.",
	"Financial peace isn't the acquisition of stuff. It's learning to live on less than you make.",
}

var errTooShort = errors.New("generated quote is too short")

// Quote is the advisor's answer.
type Quote struct {
	Text   string `json:"quote"`
	Source string `json:"source"`
}

// Options tune the generator call.
type Options struct {
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
}

// Advisor fetches quotes. A nil generator always yields a fallback.
type Advisor struct {
	generator Generator
	opts      Options
	group     singleflight.Group
	pick      func(n int) int
}

// NewAdvisor creates an Advisor. Zero options take their defaults.
func NewAdvisor(generator Generator, opts Options) *Advisor {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 2
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 250 * time.Millisecond
	}
	return &Advisor{generator: generator, opts: opts, pick: rand.IntN}
}

// Quote never fails: any generation error degrades to a fallback quote.
// Concurrent callers share one in-flight generation.
func (a *Advisor) Quote(ctx context.Context) Quote {
	if a.generator == nil {
		return a.fallback()
	}

	v, err, _ := a.group.Do("quote", func() (any, error) {
		return a.generate(context.WithoutCancel(ctx))
	})
	if err != nil {
		logger.Named("quote").Warnw("quote generation failed, using fallback", "error", err)
		return a.fallback()
	}
	return Quote{Text: v.(string), Source: SourceGemini}
}

func (a *Advisor) generate(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= a.opts.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * a.opts.Backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := a.attempt(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.Named("quote").Debugw("quote attempt failed", "attempt", attempt, "error", err)
	}
	return "", fmt.Errorf("after %d attempts: %w", a.opts.Attempts, lastErr)
}

func (a *Advisor) attempt(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	raw, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := Clean(raw)
	if len(text) <= minQuoteLength {
		return "", errTooShort
	}
	return text, nil
}

func (a *Advisor) fallback() Quote {
	return Quote{Text: Fallbacks[a.pick(len(Fallbacks))], Source: SourceFallback}
}

// Clean trims whitespace and one pair of wrapping double or single quotes.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
