package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/adapter/http/handler"
	"github.com/iho/fxwallet/internal/adapter/http/middleware"
	"github.com/iho/fxwallet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler  *handler.BalanceHandler
	RateHandler     *handler.RateHandler
	SettingsHandler *handler.SettingsHandler
	EntryHandler    *handler.EntryHandler
	MovementHandler *handler.MovementHandler
	ReportHandler   *handler.ReportHandler
	HealthHandler   *handler.HealthHandler

	// Optional: nil disables the matching middleware or endpoint.
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      *middleware.HTTPMetrics
	MetricsHandler   http.Handler

	IdempotencyTTL time.Duration
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = usecase.DefaultTransactionTimeout
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		r.Get("/balances", cfg.BalanceHandler.Get)
		r.Put("/balances", cfg.BalanceHandler.Replace)

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", cfg.RateHandler.Get)
			r.Put("/", cfg.RateHandler.Replace)
			r.Get("/resolve", cfg.RateHandler.Resolve)
			r.Put("/{from}/{to}", cfg.RateHandler.SetPair)
		})
		r.Get("/convert", cfg.RateHandler.Convert)

		r.Get("/base-currency", cfg.SettingsHandler.GetBaseCurrency)
		r.Put("/base-currency", cfg.SettingsHandler.SetBaseCurrency)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
		})

		r.Route("/movements", func(r chi.Router) {
			r.Post("/add-money", cfg.MovementHandler.AddMoney)
			r.Post("/withdraw", cfg.MovementHandler.Withdraw)
			r.Post("/send", cfg.MovementHandler.Send)
			r.Post("/scan-pay", cfg.MovementHandler.ScanPay)
			r.Post("/exchange", cfg.MovementHandler.Exchange)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", cfg.ReportHandler.Summary)
			r.Get("/consistency", cfg.ReportHandler.Consistency)
		})
	})

	return r
}
