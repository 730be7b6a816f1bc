package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/corefin/ledger/internal/adapter/http/handler"
	"github.com/corefin/ledger/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	TransactionHandler    *handler.TransactionHandler
	EntryHandler          *handler.EntryHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	Logger                zerolog.Logger
	RateLimiter           *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.TransactionHandler.Balance)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByAccount)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.ReconcileAccount)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/credit", cfg.TransactionHandler.Credit)
			r.Post("/debit", cfg.TransactionHandler.Debit)
			r.Post("/transfer", cfg.TransactionHandler.Transfer)
			r.Post("/adjust", cfg.TransactionHandler.Adjust)
			r.Get("/key/{key}", cfg.TransactionHandler.GetByKey)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Post("/{id}/reverse", cfg.TransactionHandler.Reverse)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByTransaction)
		})

		// Ledger-wide reconciliation
		r.Get("/reconciliation", cfg.ReconciliationHandler.Report)
	})

	return r
}
