package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/barter/internal/adapter/http/handler"
	"github.com/iho/barter/internal/adapter/http/middleware"
	"github.com/iho/barter/internal/infrastructure/metrics"
	"github.com/iho/barter/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TradeHandler    *handler.TradeHandler
	AccountHandler  *handler.AccountHandler
	PresenceHandler *handler.PresenceHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	TokenVerifier    middleware.TokenVerifier // nil disables authentication
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		// Trades
		r.Route("/trades", func(r chi.Router) {
			r.Post("/", cfg.TradeHandler.Propose)
			r.Get("/", cfg.TradeHandler.List)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{id}/inventory", cfg.AccountHandler.Inventory)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/", cfg.AccountHandler.List)
				r.Post("/{id}/credit", cfg.AccountHandler.Credit)
			})
		})

		// Presence
		r.Route("/presence", func(r chi.Router) {
			r.With(middleware.RequireAdmin).Get("/online", cfg.PresenceHandler.Online)
			r.Get("/{id}", cfg.PresenceHandler.Get)
			r.Post("/{id}/heartbeat", cfg.PresenceHandler.Heartbeat)
		})

		// Ledger
		r.With(middleware.RequireAdmin).Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
