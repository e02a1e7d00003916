package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/abbaskhatri/bynkbook/internal/adapter/http/handler"
	"github.com/abbaskhatri/bynkbook/internal/adapter/http/middleware"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/auth"
	"github.com/abbaskhatri/bynkbook/internal/infrastructure/metrics"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntryHandler      *handler.EntryHandler
	TransferHandler   *handler.TransferHandler
	BankTxnHandler    *handler.BankTransactionHandler
	MatchGroupHandler *handler.MatchGroupHandler
	LedgerHandler     *handler.LedgerHandler
	AuditHandler      *handler.AuditHandler
	IssueHandler      *handler.IssueHandler
	CategoryHandler   *handler.CategoryHandler
	HealthHandler     *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTManager       *auth.JWTManager
	AuthEnabled      bool
	RateLimitPerSec  float64
	RateLimitBurst   int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimitPerSec > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst, cfg.Metrics).Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled && cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/businesses/{businessID}", func(r chi.Router) {
			// Categories are business-wide
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", cfg.CategoryHandler.List)
				r.Post("/", cfg.CategoryHandler.Create)
			})

			// Transfers span two accounts of the same business
			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", cfg.TransferHandler.Create)
				r.Patch("/{transferID}", cfg.TransferHandler.Update)
				r.Delete("/{transferID}", cfg.TransferHandler.SoftDelete)
				r.Post("/{transferID}/restore", cfg.TransferHandler.Restore)
			})

			r.Route("/accounts/{accountID}", func(r chi.Router) {
				r.Get("/ledger", cfg.LedgerHandler.View)

				r.Route("/entries", func(r chi.Router) {
					r.Get("/", cfg.EntryHandler.ListByAccount)
					r.Post("/", cfg.EntryHandler.Create)
				})

				r.Route("/bank-transactions", func(r chi.Router) {
					r.Get("/", cfg.BankTxnHandler.ListByAccount)
					r.Post("/", cfg.BankTxnHandler.Ingest)
					r.Post("/{id}/entries", cfg.BankTxnHandler.SpawnEntry)
					r.Get("/{id}/match-state", cfg.MatchGroupHandler.MatchState)
					r.Get("/{id}/suggestions", cfg.MatchGroupHandler.Suggest)
				})

				r.Route("/match-groups", func(r chi.Router) {
					r.Get("/", cfg.MatchGroupHandler.List)
					r.Post("/", cfg.MatchGroupHandler.CreateBatch)
					r.Post("/{groupID}/void", cfg.MatchGroupHandler.Void)
				})

				r.Route("/audit", func(r chi.Router) {
					r.Get("/events", cfg.AuditHandler.ListEvents)
					r.Get("/events/export", cfg.AuditHandler.ExportEvents)
					r.Get("/matches/export", cfg.AuditHandler.ExportActiveMatches)
					r.Get("/bank-transactions/export", cfg.AuditHandler.ExportBankTransactions)
				})

				r.Route("/issues", func(r chi.Router) {
					r.Post("/scan", cfg.IssueHandler.Scan)
					r.Get("/last-scan", cfg.IssueHandler.LastScan)
				})
			})
		})

		// Entry ids are globally unique; mutations address them directly.
		r.Route("/entries/{id}", func(r chi.Router) {
			r.Get("/", cfg.EntryHandler.Get)
			r.Patch("/", cfg.EntryHandler.Update)
			r.Delete("/", cfg.EntryHandler.SoftDelete)
			r.Delete("/permanent", cfg.EntryHandler.HardDelete)
			r.Post("/restore", cfg.EntryHandler.Restore)
			r.Post("/duplicate", cfg.EntryHandler.Duplicate)
		})
	})

	return r
}
