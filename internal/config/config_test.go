package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("PORT", "")
	t.Setenv("JWT_ALGORITHM", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("QUOTE_ATTEMPTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.JWTAlgorithm != "HS256" {
		t.Errorf("expected HS256, got %s", cfg.JWTAlgorithm)
	}
	if cfg.JWTExpirationDur != time.Hour {
		t.Errorf("expected 1h token lifetime, got %s", cfg.JWTExpirationDur)
	}
	if cfg.QuoteAttempts != 2 || cfg.QuoteTimeout != 8*time.Second {
		t.Errorf("unexpected quote settings %d / %s", cfg.QuoteAttempts, cfg.QuoteTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("JWT_EXPIRES_IN", "15m")
	t.Setenv("QUOTE_ATTEMPTS", "4")
	t.Setenv("IDENTITY_CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.JWTAlgorithm != "HS512" {
		t.Errorf("expected HS512, got %s", cfg.JWTAlgorithm)
	}
	if cfg.JWTExpirationDur != 15*time.Minute {
		t.Errorf("expected 15m, got %s", cfg.JWTExpirationDur)
	}
	if cfg.QuoteAttempts != 4 {
		t.Errorf("expected 4 attempts, got %d", cfg.QuoteAttempts)
	}
	if cfg.IdentityCacheTTL != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.IdentityCacheTTL)
	}
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_ALGORITHM", "RS256")
	t.Setenv("JWT_EXPIRES_IN", "soon")
	t.Setenv("QUOTE_ATTEMPTS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.JWTAlgorithm != "HS256" {
		t.Errorf("expected fallback to HS256, got %s", cfg.JWTAlgorithm)
	}
	if cfg.JWTExpirationDur != time.Hour {
		t.Errorf("expected default lifetime, got %s", cfg.JWTExpirationDur)
	}
	if cfg.QuoteAttempts != 2 {
		t.Errorf("expected default attempts, got %d", cfg.QuoteAttempts)
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without JWT_SECRET in production")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
