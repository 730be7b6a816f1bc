package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/corefin/ledger/internal/adapter/http"
	"github.com/corefin/ledger/internal/adapter/http/handler"
	"github.com/corefin/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/corefin/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/corefin/ledger/internal/adapter/repository/redis"
	"github.com/corefin/ledger/internal/infrastructure/config"
	"github.com/corefin/ledger/internal/infrastructure/logger"
	"github.com/corefin/ledger/internal/infrastructure/metrics"
	"github.com/corefin/ledger/internal/infrastructure/postgres"
	"github.com/corefin/ledger/internal/infrastructure/redis"
	"github.com/corefin/ledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

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

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize metrics
	m := metrics.New()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, transactionRepo, entryRepo, idGen, retrier, idempotencyStore, m)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledgerRepo, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		TransactionHandler:    handler.NewTransactionHandler(ledgerUC),
		EntryHandler:          handler.NewEntryHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		Logger:                log,
		RateLimiter:           middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
	})

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

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
