package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/fxwallet/internal/adapter/http"
	"github.com/iho/fxwallet/internal/adapter/http/handler"
	"github.com/iho/fxwallet/internal/adapter/http/middleware"
	"github.com/iho/fxwallet/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/fxwallet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fxwallet/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/fxwallet/internal/adapter/repository/sqlite"
	"github.com/iho/fxwallet/internal/infrastructure/config"
	"github.com/iho/fxwallet/internal/infrastructure/logger"
	"github.com/iho/fxwallet/internal/infrastructure/metrics"
	"github.com/iho/fxwallet/internal/infrastructure/migrations"
	"github.com/iho/fxwallet/internal/infrastructure/postgres"
	"github.com/iho/fxwallet/internal/infrastructure/ratesfile"
	"github.com/iho/fxwallet/internal/infrastructure/redis"
	"github.com/iho/fxwallet/internal/infrastructure/sqlite"
	"github.com/iho/fxwallet/internal/usecase"
)

// limiterIdle is how long a client may stay silent before its limiter is dropped.
const limiterIdle = 10 * time.Minute

func main() {
	// Startup failures before the configured logger exists go to stderr
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application, err := newApp(ctx, cfg, appLogger, reg)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to start wallet")
	}
	defer application.Close()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      application.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go application.cleanupLimiters(ctx, limiterIdle)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().
			Str("port", cfg.HTTPPort).
			Str("storage", cfg.StorageDriver).
			Str("base_currency", application.settings.BaseCurrency()).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		appLogger.Error().Err(err).Msg("server failed")
	}

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}

// storage is one backend's set of repositories.
type storage struct {
	txManager usecase.TransactionManager
	balances  usecase.BalanceRepository
	rates     usecase.RateRepository
	entries   usecase.EntryRepository
	settings  usecase.SettingsRepository
	retrier   usecase.Retrier
	check     handler.HealthCheck
	close     func()
}

// app is the wired wallet.
type app struct {
	router   http.Handler
	settings *usecase.SettingsUseCase
	limiter  *middleware.RateLimiter
	logger   zerolog.Logger
	closers  []func()
}

// newApp opens storage, loads the persisted state and builds the router.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{logger: logger}

	currencies, err := cfg.Currencies()
	if err != nil {
		return nil, err
	}

	seed, err := ratesfile.Load(cfg.RatesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed rates: %w", err)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	checks := []handler.HealthCheck{store.check}
	rateRepo := store.rates

	// Redis is optional: it fronts the rate table and backs idempotency keys
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { client.Close() })
		logger.Info().Msg("connected to redis")

		rateRepo = redisRepo.NewRateCache(rateRepo, client, cfg.RateCacheTTL, logger)
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		checks = append(checks, redisCheck(client))
	}

	m := metrics.NewWithRegisterer(reg)

	// Initialize use cases
	balanceUC := usecase.NewBalanceUseCase(store.balances, store.txManager, currencies, m, logger)
	rateUC := usecase.NewRateUseCase(rateRepo, seed, m, logger)
	settingsUC := usecase.NewSettingsUseCase(store.settings, currencies, cfg.BaseCurrency, m, logger)

	if err := rateUC.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	if err := settingsUC.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	entryUC := usecase.NewEntryUseCase(rateUC, settingsUC, postgresRepo.NewULIDGenerator())
	ledgerUC := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager:      store.txManager,
		Balances:       balanceUC,
		BalanceRepo:    store.balances,
		EntryRepo:      store.entries,
		Retrier:        store.retrier,
		Metrics:        m,
		Logger:         logger,
		AllowOverdraft: cfg.AllowOverdraft,
	})
	movementUC := usecase.NewMovementUseCase(entryUC, ledgerUC, balanceUC, rateUC)
	logUC := usecase.NewTransactionLogUseCase(store.entries)
	reportUC := usecase.NewReportUseCase(store.entries, balanceUC)

	a.settings = settingsUC
	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimit(m.RateLimited)

	// Create router
	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:   handler.NewBalanceHandler(balanceUC, ledgerUC, rateUC, settingsUC),
		RateHandler:      handler.NewRateHandler(rateUC),
		SettingsHandler:  handler.NewSettingsHandler(settingsUC, currencies.Codes()),
		EntryHandler:     handler.NewEntryHandler(entryUC, ledgerUC, logUC),
		MovementHandler:  handler.NewMovementHandler(movementUC),
		ReportHandler:    handler.NewReportHandler(reportUC),
		HealthHandler:    handler.NewHealthHandler(checks...),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.limiter,
		HTTPMetrics:      middleware.NewHTTPMetrics(reg),
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           logger,
	})

	return a, nil
}

// Close releases storage and redis connections in reverse opening order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) cleanupLimiters(ctx context.Context, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.CleanupLimiters(maxIdle); n > 0 {
				a.logger.Debug().Int("removed", n).Msg("dropped idle rate limiters")
			}
		}
	}
}

// openStorage connects the configured backend and applies its migrations.
func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(cfg.DatabaseURL, migrations.Postgres); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info().Msg("connected to postgres")
		return postgresStorage(pool, logger), nil

	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(sqlite.MigrationURL(cfg.SQLitePath), migrations.SQLite); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")
		return sqliteStorage(db, logger), nil

	default:
		return memoryStorage(), nil
	}
}

func postgresStorage(pool *pgxpool.Pool, logger zerolog.Logger) *storage {
	return &storage{
		txManager: postgresRepo.NewTxManager(pool),
		balances:  postgresRepo.NewBalanceRepository(pool),
		rates:     postgresRepo.NewRateRepository(pool),
		entries:   postgresRepo.NewEntryRepository(pool),
		settings:  postgresRepo.NewSettingsRepository(pool),
		retrier:   postgresRepo.NewRetrier(logger),
		check:     handler.HealthCheck{Name: "postgres", Check: pool.Ping},
		close:     pool.Close,
	}
}

func sqliteStorage(db *sql.DB, logger zerolog.Logger) *storage {
	return &storage{
		txManager: sqliteRepo.NewTxManager(db),
		balances:  sqliteRepo.NewBalanceRepository(db),
		rates:     sqliteRepo.NewRateRepository(db),
		entries:   sqliteRepo.NewEntryRepository(db),
		settings:  sqliteRepo.NewSettingsRepository(db),
		retrier:   postgresRepo.NewRetrierFor(sqliteRepo.IsBusy, logger),
		check:     handler.HealthCheck{Name: "sqlite", Check: db.PingContext},
		close:     func() { db.Close() },
	}
}

func memoryStorage() *storage {
	store := memory.NewStore()
	return &storage{
		txManager: memory.NewTxManager(store),
		balances:  memory.NewBalanceRepository(store),
		rates:     memory.NewRateRepository(store),
		entries:   memory.NewEntryRepository(store),
		settings:  memory.NewSettingsRepository(store),
		check:     handler.HealthCheck{Name: "storage", Check: func(ctx context.Context) error { return nil }},
		close:     func() {},
	}
}

func redisCheck(client *goredis.Client) handler.HealthCheck {
	return handler.HealthCheck{
		Name:  "redis",
		Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}
