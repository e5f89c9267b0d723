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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/pettycash/internal/adapter/http"
	"github.com/iho/pettycash/internal/adapter/http/handler"
	"github.com/iho/pettycash/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/pettycash/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/pettycash/internal/adapter/repository/redis"
	"github.com/iho/pettycash/internal/infrastructure/auth"
	"github.com/iho/pettycash/internal/infrastructure/config"
	"github.com/iho/pettycash/internal/infrastructure/eventpublisher"
	"github.com/iho/pettycash/internal/infrastructure/logger"
	"github.com/iho/pettycash/internal/infrastructure/metrics"
	"github.com/iho/pettycash/internal/infrastructure/postgres"
	"github.com/iho/pettycash/internal/infrastructure/redis"
	"github.com/iho/pettycash/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.SetGlobal(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	approvalRepo := postgresRepo.NewApprovalRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier().WithLogger(log)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	reportCache := redisRepo.NewCache(redisClient)

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, auditRepo, idGen, m)
	cashUC := usecase.NewCashUseCase(txManager, accountRepo, entryRepo, outboxRepo, auditRepo, idGen, retrier, m)
	entryUC := usecase.NewEntryUseCase(accountRepo, entryRepo)
	reportUC := usecase.NewReportUseCase(accountRepo, entryRepo, reportCache, cfg.ReportCacheTTL, m)
	reconUC := usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledgerRepo, m)
	approvalUC := usecase.NewApprovalUseCase(txManager, approvalRepo, accountRepo, entryRepo, outboxRepo, auditRepo, idGen, retrier, m)

	// Outbox publishing
	publisher, closePublisher := newPublisher(cfg, &log)
	defer func() {
		if err := closePublisher(); err != nil {
			log.Error().Err(err).Msg("failed to close publisher")
		}
	}()
	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     &log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := outbox.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
	go cleanupLimiters(ctx, rateLimiter, time.Minute)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		EntryHandler:     handler.NewEntryHandler(entryUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		CashHandler:      handler.NewCashHandler(cashUC),
		ApprovalHandler:  handler.NewApprovalHandler(approvalUC),
		LedgerHandler:    handler.NewLedgerHandler(reconUC),
		AuditHandler:     handler.NewAuditHandler(auditRepo),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		TokenVerifier:    tokenVerifier(cfg),
		Logger:           log,
		Metrics:          m,
		Gatherer:         registry,
		AllowedOrigins:   allowedOrigins(cfg.CORSAllowedOrigins),
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
		log.Info().Str("port", cfg.HTTPPort).Bool("auth", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newPublisher picks Kafka when brokers are configured and logs events
// otherwise. The returned func closes the publisher.
func newPublisher(cfg *config.Config, log *zerolog.Logger) (eventpublisher.Publisher, func() error) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(log), func() error { return nil }
	}
	kafka := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	return kafka, kafka.Close
}

// tokenVerifier returns nil when auth is off so the router skips auth and
// role checks. config.Load refuses auth without a secret.
func tokenVerifier(cfg *config.Config) middleware.TokenVerifier {
	if !cfg.AuthEnabled {
		return nil
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
}

// allowedOrigins maps the "*" default onto the router's own default list.
func allowedOrigins(origins []string) []string {
	if len(origins) == 1 && origins[0] == "*" {
		return nil
	}
	return origins
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(limiterIdleTimeout)
		}
	}
}
