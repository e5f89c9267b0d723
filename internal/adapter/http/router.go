package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/pettycash/internal/adapter/http/handler"
	"github.com/iho/pettycash/internal/adapter/http/middleware"
	"github.com/iho/pettycash/internal/domain"
	"github.com/iho/pettycash/internal/infrastructure/metrics"
	"github.com/iho/pettycash/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	EntryHandler    *handler.EntryHandler
	ReportHandler   *handler.ReportHandler
	CashHandler     *handler.CashHandler
	ApprovalHandler *handler.ApprovalHandler
	LedgerHandler   *handler.LedgerHandler
	AuditHandler    *handler.AuditHandler
	HealthHandler   *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// TokenVerifier enables JWT auth and role checks when set.
	TokenVerifier middleware.TokenVerifier

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(cors.Handler(corsOptions(cfg.AllowedOrigins)))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, cfg.Metrics))
		}
		r.Use(middleware.BoardingHouseScope)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).WithTTL(cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		require := func(allowed func(domain.Role) bool) func(http.Handler) http.Handler {
			if cfg.TokenVerifier == nil {
				return passthrough
			}
			return middleware.RequireRole(allowed)
		}
		manage := require(domain.Role.CanManageAccounts)
		spend := require(domain.Role.CanSpend)
		decide := require(domain.Role.CanDecide)

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.With(manage).Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/balance/history", cfg.EntryHandler.GetHistoricalBalance)
			r.Get("/{id}/ledger", cfg.ReportHandler.Ledger)
			r.Get("/{id}/ledger.csv", cfg.ReportHandler.LedgerCSV)
			r.Get("/{id}/ledger.pdf", cfg.ReportHandler.LedgerPDF)
			r.Get("/{id}/reconciliation", cfg.LedgerHandler.ReconcileAccount)
			r.With(manage).Post("/{id}/issuances", cfg.CashHandler.Issue)
			r.With(spend).Post("/{id}/expenses", cfg.CashHandler.Expense)
		})

		// Approval requests
		r.Route("/requests", func(r chi.Router) {
			r.With(spend).Post("/", cfg.ApprovalHandler.Submit)
			r.Get("/", cfg.ApprovalHandler.List)
			r.Get("/{id}", cfg.ApprovalHandler.Get)
			r.With(decide).Post("/{id}/approve", cfg.ApprovalHandler.Approve)
			r.With(decide).Post("/{id}/reject", cfg.ApprovalHandler.Reject)
			r.With(spend).Post("/{id}/confirm", cfg.ApprovalHandler.Confirm)
		})

		// Ledger-wide checks
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/reconciliation", cfg.LedgerHandler.Reconciliation)
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
		})

		if cfg.AuditHandler != nil {
			r.With(manage).Get("/audit-logs", cfg.AuditHandler.List)
		}
	})

	return r
}

func passthrough(next http.Handler) http.Handler { return next }

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			middleware.IdempotencyKeyHeader, middleware.BoardingHouseHeader,
		},
		ExposedHeaders:   []string{"Content-Disposition", middleware.IdempotencyReplayHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
}
