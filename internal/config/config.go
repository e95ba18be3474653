// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/logger"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret        string
	JWTAlgorithm     string
	JWTExpirationDur time.Duration

	// Quote advisor
	GeminiAPIKey  string
	GeminiModel   string
	QuoteTimeout  time.Duration
	QuoteAttempts int

	// Identity cache
	RedisAddr        string
	RedisPassword    string
	IdentityCacheTTL time.Duration

	// Budget events
	AMQPURL      string
	AMQPExchange string
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

var appConfig *Config

// Load reads configuration from environment variables. A missing .env file
// is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debugw(".env file not loaded", "error", err)
	}

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "budgetbuddy"),
		DBPassword:  getEnv("DB_PASSWORD", "budgetbuddy"),
		DBName:      getEnv("DB_NAME", "budgetbuddy"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:    getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTAlgorithm: strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget.events"),
	}

	if !supportedAlgorithms[cfg.JWTAlgorithm] {
		logger.Get().Warnw("unsupported JWT_ALGORITHM, falling back to HS256", "value", cfg.JWTAlgorithm)
		cfg.JWTAlgorithm = "HS256"
	}

	cfg.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", time.Hour)
	cfg.QuoteTimeout = getDuration("QUOTE_TIMEOUT", 8*time.Second)
	cfg.IdentityCacheTTL = getDuration("IDENTITY_CACHE_TTL", 10*time.Minute)
	cfg.QuoteAttempts = getInt("QUOTE_ATTEMPTS", 2)

	if cfg.Env == "production" && cfg.JWTSecret == "fallback-secret-key-for-dev-only" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	appConfig = cfg
	return cfg, nil
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		cfg, err := Load()
		if err != nil {
			logger.Get().Fatalw("failed to load configuration", "error", err)
		}
		appConfig = cfg
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Get().Warnw("invalid duration, using default", "key", key, "value", raw, "default", defaultValue.String())
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		logger.Get().Warnw("invalid integer, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}
