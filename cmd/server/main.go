package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/fintally/claimcore/internal/adapter/http"
	"github.com/fintally/claimcore/internal/adapter/http/handler"
	"github.com/fintally/claimcore/internal/adapter/http/middleware"
	"github.com/fintally/claimcore/internal/adapter/paymentrail"
	postgresRepo "github.com/fintally/claimcore/internal/adapter/repository/postgres"
	redisRepo "github.com/fintally/claimcore/internal/adapter/repository/redis"
	"github.com/fintally/claimcore/internal/infrastructure/auth"
	"github.com/fintally/claimcore/internal/infrastructure/config"
	"github.com/fintally/claimcore/internal/infrastructure/eventpublisher"
	"github.com/fintally/claimcore/internal/infrastructure/logging"
	"github.com/fintally/claimcore/internal/infrastructure/metrics"
	"github.com/fintally/claimcore/internal/infrastructure/postgres"
	"github.com/fintally/claimcore/internal/infrastructure/redis"
	"github.com/fintally/claimcore/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Library code (payment rail, outbox dispatcher) logs through slog with
	// identity-aware context fields.
	appLogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	claimRepo := postgresRepo.NewClaimRepository(pool)
	itemRepo := postgresRepo.NewItemRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	ruleRepo := postgresRepo.NewRuleRepository(pool)
	approvalRepo := postgresRepo.NewApprovalRepository(pool)
	reimbursementRepo := postgresRepo.NewReimbursementRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool)
	budgetRepo := postgresRepo.NewBudgetRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	ruleCache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	converter := usecase.NewCurrencyConverter(rateRepo)
	matcher := usecase.NewRuleMatcher(ruleRepo, budgetRepo, converter)
	claimUC := usecase.NewClaimUseCase(txManager, claimRepo, itemRepo, categoryRepo,
		approvalRepo, outboxRepo, matcher, converter, idGen, cfg.ReferenceCurrency, appMetrics).WithRetrier(retrier)
	approvalUC := usecase.NewApprovalUseCase(txManager, claimRepo, approvalRepo, outboxRepo, idGen, appMetrics).WithRetrier(retrier)
	ruleUC := usecase.NewRuleUseCase(ruleRepo, idGen, appMetrics).WithCache(ruleCache)
	rateUC := usecase.NewRateUseCase(rateRepo, converter, idGen)
	budgetUC := usecase.NewBudgetUseCase(budgetRepo, idGen)
	reimbursementUC := usecase.NewReimbursementUseCase(txManager, claimRepo, reimbursementRepo,
		outboxRepo, paymentrail.NewLogRail(appLogger), converter, idGen, appMetrics)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ClaimHandler:         handler.NewClaimHandler(claimUC),
		ApprovalHandler:      handler.NewApprovalHandler(approvalUC),
		RuleHandler:          handler.NewRuleHandler(ruleUC),
		ReimbursementHandler: handler.NewReimbursementHandler(reimbursementUC),
		RateHandler:          handler.NewRateHandler(rateUC),
		BudgetHandler:        handler.NewBudgetHandler(budgetUC),
		HealthHandler:        healthHandler,
		IdempotencyStore:     idempotencyStore,
		JWTManager:           jwtManager,
		RateLimiter:          middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
	})

	// Start the outbox dispatcher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(appLogger.Logger),
		Logger:     appLogger.Logger,
		Metrics:    appMetrics,
		BatchSize:  cfg.PublisherBatchSize,
		Interval:   cfg.PublisherInterval,
		Retention:  cfg.PublisherRetention,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
