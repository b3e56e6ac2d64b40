package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/loanledger/internal/adapter/http/handler"
	"github.com/iho/loanledger/internal/adapter/http/middleware"
	"github.com/iho/loanledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ProductHandler     *handler.ProductHandler
	ApplicationHandler *handler.ApplicationHandler
	AccountHandler     *handler.AccountHandler
	PaymentHandler     *handler.PaymentHandler
	ScheduleHandler    *handler.ScheduleHandler
	DelinquencyHandler *handler.DelinquencyHandler
	LedgerHandler      *handler.LedgerHandler
	AuditHandler       *handler.AuditHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Loan products
		r.Route("/products", func(r chi.Router) {
			r.Post("/", cfg.ProductHandler.Create)
			r.Get("/", cfg.ProductHandler.List)
			r.Get("/{id}", cfg.ProductHandler.Get)
		})

		// Loan applications
		r.Route("/applications", func(r chi.Router) {
			r.Post("/", cfg.ApplicationHandler.Create)
			r.Get("/{id}", cfg.ApplicationHandler.Get)
			r.Post("/{id}/submit", cfg.ApplicationHandler.Submit)
			r.Post("/{id}/review", cfg.ApplicationHandler.StartReview)
			r.Post("/{id}/approve", cfg.ApplicationHandler.Approve)
			r.Post("/{id}/reject", cfg.ApplicationHandler.Reject)
			r.Post("/{id}/cancel", cfg.ApplicationHandler.Cancel)
			r.Post("/{id}/disburse", cfg.ApplicationHandler.Disburse)
		})

		// Loan accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/schedule", cfg.AccountHandler.Schedule)
			r.Get("/{id}/transactions", cfg.AccountHandler.Transactions)
			r.Get("/{id}/summary", cfg.AccountHandler.Summary)
			r.Post("/{id}/suspend", cfg.AccountHandler.Suspend)
			r.Post("/{id}/reinstate", cfg.AccountHandler.Reinstate)
			r.Post("/{id}/schedule/{index}/waive", cfg.AccountHandler.Waive)
			r.Post("/{id}/payments", cfg.PaymentHandler.Apply)
			r.Post("/{id}/payments/early-payoff", cfg.PaymentHandler.EarlyPayoff)
		})

		// Stateless schedule preview
		r.Post("/schedules/preview", cfg.ScheduleHandler.Preview)

		// Operations
		r.Post("/delinquency/sweep", cfg.DelinquencyHandler.RunSweep)
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		r.Get("/audit/{type}/{id}", cfg.AuditHandler.History)
	})

	return r
}
