package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/adapter/http/handler"
	apimiddleware "github.com/iho/fxwallet/internal/adapter/http/middleware"
	"github.com/iho/fxwallet/internal/adapter/repository/memory"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotentMovementIsAppliedOnce(t *testing.T) {
	store := &stubIdempotencyStore{values: map[string][]byte{}}
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	send := func() *httptest.ResponseRecorder {
		body := `{"currency":"USD","amount":"25"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/movements/add-money", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Header().Get(apimiddleware.IdempotencyReplayHeader) == "" {
		t.Fatal("expected the second response to be a replay")
	}
	if strings.TrimSpace(first.Body.String()) != strings.TrimSpace(second.Body.String()) {
		t.Fatalf("expected identical bodies\nfirst:  %s\nsecond: %s", first.Body.String(), second.Body.String())
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil))
	if !strings.Contains(rec.Body.String(), `"amount":"125"`) {
		t.Fatalf("expected USD 125 after one credit, got %s", rec.Body.String())
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.HTTPMetrics = apimiddleware.NewHTTPMetrics(reg)
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/rates/resolve?from=USD&to=NGN", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fxwallet_http_requests_total") {
		t.Fatalf("expected http metrics in exposition, got %s", rec.Body.String())
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t, func(cfg *RouterConfig) {
		cfg.MetricsHandler = http.NotFoundHandler()
	}))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"GET /api/v1/balances",
		"PUT /api/v1/balances",
		"GET /api/v1/rates/",
		"PUT /api/v1/rates/",
		"GET /api/v1/rates/resolve",
		"PUT /api/v1/rates/{from}/{to}",
		"GET /api/v1/convert",
		"GET /api/v1/base-currency",
		"PUT /api/v1/base-currency",
		"POST /api/v1/entries/",
		"GET /api/v1/entries/",
		"POST /api/v1/movements/add-money",
		"POST /api/v1/movements/withdraw",
		"POST /api/v1/movements/send",
		"POST /api/v1/movements/scan-pay",
		"POST /api/v1/movements/exchange",
		"GET /api/v1/reports/summary",
		"GET /api/v1/reports/consistency",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

type counterIDs struct {
	n atomic.Int64
}

func (c *counterIDs) Generate() string {
	return fmt.Sprintf("id-%d", c.n.Add(1))
}

func newRouterConfig(t *testing.T, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()
	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	currencies := domain.NewCurrencySet(
		[]string{"USD", "NGN"},
		map[string]decimal.Decimal{"USD": decimal.NewFromInt(100), "NGN": decimal.Zero},
	)
	seed := domain.NewRateTable(1, time.Now().UTC(), map[string]map[string]decimal.Decimal{
		"USD": {"NGN": decimal.NewFromInt(1650)},
	})

	balanceRepo := memory.NewBalanceRepository(store)
	entryRepo := memory.NewEntryRepository(store)
	balances := usecase.NewBalanceUseCase(balanceRepo, txManager, currencies, nil, logger)
	rates := usecase.NewRateUseCase(memory.NewRateRepository(store), seed, nil, logger)
	settings := usecase.NewSettingsUseCase(memory.NewSettingsRepository(store), currencies, "NGN", nil, logger)
	if err := rates.Load(ctx); err != nil {
		t.Fatalf("load rates: %v", err)
	}
	if err := settings.Load(ctx); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	factory := usecase.NewEntryUseCase(rates, settings, &counterIDs{})
	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager:      txManager,
		Balances:       balances,
		BalanceRepo:    balanceRepo,
		EntryRepo:      entryRepo,
		Logger:         logger,
		AllowOverdraft: true,
	})

	cfg := RouterConfig{
		BalanceHandler:  handler.NewBalanceHandler(balances, ledger, rates, settings),
		RateHandler:     handler.NewRateHandler(rates),
		SettingsHandler: handler.NewSettingsHandler(settings, currencies.Codes()),
		EntryHandler:    handler.NewEntryHandler(factory, ledger, usecase.NewTransactionLogUseCase(entryRepo)),
		MovementHandler: handler.NewMovementHandler(usecase.NewMovementUseCase(factory, ledger, balances, rates)),
		ReportHandler:   handler.NewReportHandler(usecase.NewReportUseCase(entryRepo, balances)),
		HealthHandler:   handler.NewHealthHandler(),
		Logger:          logger,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return true, v, nil
	}
	s.values[key] = []byte(usecase.IdempotencyProcessing)
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = response
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
