package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/loanledger/internal/adapter/http"
	"github.com/iho/loanledger/internal/adapter/http/handler"
	"github.com/iho/loanledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/loanledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/loanledger/internal/adapter/repository/redis"
	"github.com/iho/loanledger/internal/infrastructure/config"
	"github.com/iho/loanledger/internal/infrastructure/eventpublisher"
	"github.com/iho/loanledger/internal/infrastructure/logger"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
	"github.com/iho/loanledger/internal/infrastructure/postgres"
	"github.com/iho/loanledger/internal/infrastructure/redis"
	"github.com/iho/loanledger/internal/infrastructure/sweeper"
	"github.com/iho/loanledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	penaltyRate, err := cfg.PenaltyRate()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid penalty rate")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	productRepo := postgresRepo.NewProductRepository(pool)
	applicationRepo := postgresRepo.NewApplicationRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	scheduleRepo := postgresRepo.NewScheduleRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	productUC := usecase.NewProductUseCase(productRepo, idGen)
	lifecycleUC := usecase.NewLifecycleUseCase(txManager, productRepo, applicationRepo, accountRepo, scheduleRepo, outboxRepo, idGen)
	paymentUC := usecase.NewPaymentUseCase(txManager, accountRepo, scheduleRepo, transactionRepo, applicationRepo, outboxRepo, idGen).
		WithRetrier(postgresRepo.NewRetrier(log.Logger))
	delinquencyUC := usecase.NewDelinquencyUseCase(txManager, accountRepo, scheduleRepo, outboxRepo, idGen, usecase.DelinquencyConfig{
		DailyPenaltyRate:       penaltyRate,
		DefaultThresholdMonths: cfg.DefaultThresholdMonths,
	})
	accountUC := usecase.NewAccountUseCase(accountRepo, scheduleRepo, transactionRepo, ledgerRepo, cache)
	auditUC := usecase.NewAuditUseCase(auditRepo, idGen)

	// Initialize handlers
	productHandler := handler.NewProductHandler(productUC)
	applicationHandler := handler.NewApplicationHandler(lifecycleUC, auditUC)
	accountHandler := handler.NewAccountHandler(accountUC, lifecycleUC, auditUC)
	paymentHandler := handler.NewPaymentHandler(paymentUC, accountUC, auditUC)
	scheduleHandler := handler.NewScheduleHandler()
	delinquencyHandler := handler.NewDelinquencyHandler(delinquencyUC, auditUC)
	ledgerHandler := handler.NewLedgerHandler(accountUC)
	auditHandler := handler.NewAuditHandler(auditUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ProductHandler:     productHandler,
		ApplicationHandler: applicationHandler,
		AccountHandler:     accountHandler,
		PaymentHandler:     paymentHandler,
		ScheduleHandler:    scheduleHandler,
		DelinquencyHandler: delinquencyHandler,
		LedgerHandler:      ledgerHandler,
		AuditHandler:       auditHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Logger:             log.Logger,
	})

	// Background workers
	appMetrics := metrics.New()
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log.Logger),
		Logger:     log.Logger,
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if cfg.SweepEnabled {
		sw := sweeper.NewSweeper(sweeper.Config{
			DelinquencyUC: delinquencyUC,
			Logger:        log.Logger,
			Metrics:       appMetrics,
			Interval:      cfg.SweepInterval,
		})
		go func() {
			if err := sw.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				log.Error().Err(err).Msg("delinquency sweeper stopped")
			}
		}()
	}

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
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
