package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/abbaskhatri/bynkbook/internal/adapter/http"
	"github.com/abbaskhatri/bynkbook/internal/adapter/http/handler"
	postgresRepo "github.com/abbaskhatri/bynkbook/internal/adapter/repository/postgres"
	redisRepo "github.com/abbaskhatri/bynkbook/internal/adapter/repository/redis"
	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/auth"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/config"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/logger"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/logging"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/metrics"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/postgres"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/redis"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger
	slog.SetDefault(logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat).Logger)

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

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	bankRepo := postgresRepo.NewBankTransactionRepository(pool)
	matchRepo := postgresRepo.NewMatchGroupRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	hintStore := redisRepo.NewHintStore(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	issueConfig := domain.IssueConfig{
		StaleCheckDays:       cfg.StaleCheckDays,
		DupWindowCheckDays:   cfg.DupWindowCheckDays,
		DupWindowOtherDays:   cfg.DupWindowOtherDays,
		RevertHeavyThreshold: cfg.RevertHeavyMinVoids,
	}

	// Initialize use cases
	entryUC := usecase.NewEntryUseCase(txManager, accountRepo, entryRepo, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, entryRepo, idGen)
	bankUC := usecase.NewBankTransactionUseCase(bankRepo, entryRepo, txManager, idGen)
	matchUC := usecase.NewMatchGroupUseCase(txManager, matchRepo, bankRepo, entryRepo, idGen).
		WithRetrier(postgresRepo.NewRetrier())
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, entryRepo, categoryRepo, matchRepo, issueConfig)
	auditUC := usecase.NewAuditUseCase(matchRepo, bankRepo, entryRepo)
	issueUC := usecase.NewIssueUseCase(entryRepo, bankRepo, matchRepo, categoryRepo, hintStore, issueConfig, appLogger)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, idGen)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntryHandler:      handler.NewEntryHandler(entryUC),
		TransferHandler:   handler.NewTransferHandler(transferUC),
		BankTxnHandler:    handler.NewBankTransactionHandler(bankUC),
		MatchGroupHandler: handler.NewMatchGroupHandler(matchUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		AuditHandler:      handler.NewAuditHandler(auditUC),
		IssueHandler:      handler.NewIssueHandler(issueUC),
		CategoryHandler:   handler.NewCategoryHandler(categoryUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),

		Logger:           appLogger,
		Metrics:          appMetrics,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		JWTManager:       jwtManager,
		AuthEnabled:      cfg.AuthEnabled && jwtManager != nil,
		RateLimitPerSec:  cfg.RateLimitPerSecond,
		RateLimitBurst:   cfg.RateLimitBurst,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
