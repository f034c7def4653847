package postgres

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/migrations"
	infrapg "github.com/iho/fxwallet/internal/infrastructure/postgres"
	"github.com/iho/fxwallet/internal/usecase"
)

// newIntegrationPool connects to DATABASE_URL, migrates it and empties every
// table. The test is skipped when no database is configured.
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := migrations.Up(dbURL, migrations.Postgres); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE TABLE balances, rate_tables, entries, settings`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return pool
}

func TestIntegration_ConcurrentDebits(t *testing.T) {
	pool := newIntegrationPool(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	currencies := domain.NewCurrencySet([]string{"USD", "NGN"}, map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1000),
	})
	seed := domain.NewRateTable(1, time.Now().UTC(), map[string]map[string]decimal.Decimal{
		"USD": {"NGN": decimal.NewFromInt(1650)},
	})

	txManager := NewTxManager(pool)
	balanceRepo := NewBalanceRepository(pool)
	entryRepo := NewEntryRepository(pool)

	balances := usecase.NewBalanceUseCase(balanceRepo, txManager, currencies, nil, logger)
	rates := usecase.NewRateUseCase(NewRateRepository(pool), seed, nil, logger)
	settings := usecase.NewSettingsUseCase(NewSettingsRepository(pool), currencies, "NGN", nil, logger)
	if err := rates.Load(ctx); err != nil {
		t.Fatalf("load rates: %v", err)
	}
	if err := settings.Load(ctx); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	factory := usecase.NewEntryUseCase(rates, settings, NewULIDGenerator())
	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager:   txManager,
		Balances:    balances,
		BalanceRepo: balanceRepo,
		EntryRepo:   entryRepo,
		Retrier:     NewRetrier(logger),
		Logger:      logger,
	})
	movements := usecase.NewMovementUseCase(factory, ledger, balances, rates)

	// 1000 USD covers exactly 100 debits of 10
	const numDebits = 100
	var (
		wg           sync.WaitGroup
		successCount atomic.Int32
		errorCount   atomic.Int32
	)
	wg.Add(numDebits + 1)
	for range numDebits + 1 {
		go func() {
			defer wg.Done()

			_, err := movements.ScanPay(ctx, usecase.ScanPayInput{
				Currency: "USD",
				Merchant: "Shoprite",
				Amount:   decimal.NewFromInt(10),
			})
			if err != nil {
				errorCount.Add(1)
				return
			}
			successCount.Add(1)
		}()
	}
	wg.Wait()

	if successCount.Load() != numDebits || errorCount.Load() != 1 {
		t.Fatalf("expected %d debits and 1 refusal, got %d and %d", numDebits, successCount.Load(), errorCount.Load())
	}

	got, err := balances.GetBalances(ctx)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if !got.Get("USD").IsZero() {
		t.Fatalf("expected USD 0, got %s", got.Get("USD"))
	}

	entries, err := entryRepo.List(ctx)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != numDebits {
		t.Fatalf("expected %d logged entries, got %d", numDebits, len(entries))
	}
	if report := domain.CheckLog(entries); !report.Consistent() {
		t.Fatalf("expected a consistent log, got %+v", report)
	}
}

func TestIntegration_ExchangeIsAtomic(t *testing.T) {
	pool := newIntegrationPool(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	currencies := domain.NewCurrencySet([]string{"USD", "NGN"}, map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(100),
	})
	seed := domain.NewRateTable(1, time.Now().UTC(), map[string]map[string]decimal.Decimal{
		"USD": {"NGN": decimal.NewFromInt(1650)},
	})

	txManager := NewTxManager(pool)
	balanceRepo := NewBalanceRepository(pool)
	entryRepo := NewEntryRepository(pool)
	balances := usecase.NewBalanceUseCase(balanceRepo, txManager, currencies, nil, logger)
	rates := usecase.NewRateUseCase(NewRateRepository(pool), seed, nil, logger)
	settings := usecase.NewSettingsUseCase(NewSettingsRepository(pool), currencies, "NGN", nil, logger)
	if err := rates.Load(ctx); err != nil {
		t.Fatalf("load rates: %v", err)
	}

	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager:   txManager,
		Balances:    balances,
		BalanceRepo: balanceRepo,
		EntryRepo:   entryRepo,
		Logger:      logger,
	})
	movements := usecase.NewMovementUseCase(usecase.NewEntryUseCase(rates, settings, NewULIDGenerator()), ledger, balances, rates)

	applied, err := movements.Exchange(ctx, usecase.ExchangeInput{From: "USD", To: "NGN", Amount: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected two entries, got %d", len(applied))
	}

	got, err := balances.GetBalances(ctx)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if !got.Get("USD").Equal(decimal.NewFromInt(90)) || !got.Get("NGN").Equal(decimal.NewFromInt(16500)) {
		t.Fatalf("unexpected balances %v", got)
	}
}
