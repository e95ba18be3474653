package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/database"
	"budgetbuddy/internal/events"
	"budgetbuddy/internal/logger"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/quote"
	"budgetbuddy/internal/router"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/validator"
)

// @title           Budget Buddy API
// @version         1.0
// @description     Personal budgeting API: categories, budget plans and expenses with plan totals kept in sync.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identities := newIdentityCache(ctx, appConfig)
	publisher := newPublisher(appConfig)
	defer publisher.Close()
	advisor := newAdvisor(ctx, appConfig)

	tokens, err := middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTAlgorithm, appConfig.JWTExpirationDur)
	if err != nil {
		return fmt.Errorf("failed to configure tokens: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	engine := router.New(router.Deps{
		Users:      services.NewUserService(db, identities),
		Categories: services.NewCategoryService(db),
		Plans:      services.NewBudgetPlanService(db),
		Expenses:   services.NewExpenseService(db, publisher),
		Audit:      services.NewAuditService(db),
		Quotes:     advisor,
		Tokens:     tokens,
		Identities: identities,
		Ping:       dbManager.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Budget Buddy server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newIdentityCache connects to Redis when REDIS_ADDR is set. Without it, or
// if Redis is down at startup, every request resolves against the database.
func newIdentityCache(ctx context.Context, cfg *config.Config) cache.IdentityCache {
	if cfg.RedisAddr == "" {
		return cache.NopIdentityCache{}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	client, err := cache.Connect(pingCtx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Get().Warnw("identity cache disabled", "error", err)
		return cache.NopIdentityCache{}
	}
	logger.Get().Infow("identity cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.IdentityCacheTTL)
	return cache.NewRedisIdentityCache(client, cfg.IdentityCacheTTL)
}

// newPublisher connects to the AMQP broker when AMQP_URL is set.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Get().Warnw("budget events disabled", "error", err)
		return events.NopPublisher{}
	}
	logger.Get().Infow("publishing budget events", "exchange", cfg.AMQPExchange)
	return publisher
}

// newAdvisor creates the quote advisor. Without an API key it only serves
// fallback quotes.
func newAdvisor(ctx context.Context, cfg *config.Config) *quote.Advisor {
	opts := quote.Options{Timeout: cfg.QuoteTimeout, Attempts: cfg.QuoteAttempts}
	if cfg.GeminiAPIKey == "" {
		logger.Get().Info("GEMINI_API_KEY not set, quotes will use the fallback list")
		return quote.NewAdvisor(nil, opts)
	}
	generator, err := quote.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Get().Warnw("quote generation disabled", "error", err)
		return quote.NewAdvisor(nil, opts)
	}
	return quote.NewAdvisor(generator, opts)
}
