package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/ledgerreplay/internal/adapter/http/handler"
	"github.com/iho/ledgerreplay/internal/adapter/http/middleware"
	"github.com/iho/ledgerreplay/internal/infrastructure/metrics"
	"github.com/iho/ledgerreplay/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EmployeeLedger     *handler.LedgerHandler
	BankLedger         *handler.LedgerHandler
	BranchHandler      *handler.BranchHandler
	SourceEventHandler *handler.SourceEventHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
	Metrics            *metrics.Metrics
	// MetricsHandler serves /metrics. Defaults to the default registry.
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewRecovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		if cfg.EmployeeLedger != nil {
			r.Route("/employees", cfg.EmployeeLedger.Routes)
		}
		if cfg.BankLedger != nil {
			r.Route("/banks", cfg.BankLedger.Routes)
		}
		if cfg.BranchHandler != nil {
			r.Get("/branches/{branch}/bank-balances", cfg.BranchHandler.GetBankBalances)
		}
		if cfg.SourceEventHandler != nil {
			r.Post("/source-events", cfg.SourceEventHandler.Publish)
		}
	})

	return r
}
