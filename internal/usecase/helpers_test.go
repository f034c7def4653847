package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/adapter/repository/memory"
	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

type sequenceIDs struct {
	n atomic.Int64
}

func (s *sequenceIDs) Generate() string {
	return fmt.Sprintf("entry-%04d", s.n.Add(1))
}

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	n    atomic.Int64
	base time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.base.Add(time.Duration(c.n.Add(1)) * time.Second)
}

type testWallet struct {
	store     *memory.Store
	balances  *usecase.BalanceUseCase
	rates     *usecase.RateUseCase
	settings  *usecase.SettingsUseCase
	factory   *usecase.EntryUseCase
	ledger    *usecase.LedgerUseCase
	log       *usecase.TransactionLogUseCase
	movements *usecase.MovementUseCase
	reports   *usecase.ReportUseCase
	clock     *fakeClock
}

type walletOption func(cfg *usecase.LedgerConfig)

func strict() walletOption {
	return func(cfg *usecase.LedgerConfig) { cfg.AllowOverdraft = false }
}

func testCurrencySet() domain.CurrencySet {
	return domain.NewCurrencySet(
		[]string{domain.USD, domain.NGN},
		map[string]decimal.Decimal{domain.USD: decimal.NewFromInt(100), domain.NGN: decimal.Zero},
	)
}

func seedRates() *domain.RateTable {
	return domain.NewRateTable(1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), map[string]map[string]decimal.Decimal{
		domain.USD: {domain.NGN: decimal.NewFromInt(1650)},
	})
}

// newTestWallet wires every use case over a fresh memory store with balances
// {USD: 100, NGN: 0}, base currency NGN and USD→NGN = 1650.
func newTestWallet(t *testing.T, opts ...walletOption) *testWallet {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()
	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	currencies := testCurrencySet()

	balances := usecase.NewBalanceUseCase(memory.NewBalanceRepository(store), txManager, currencies, nil, logger)
	rates := usecase.NewRateUseCase(memory.NewRateRepository(store), seedRates(), nil, logger)
	settings := usecase.NewSettingsUseCase(memory.NewSettingsRepository(store), currencies, domain.NGN, nil, logger)
	if err := rates.Load(ctx); err != nil {
		t.Fatalf("load rates: %v", err)
	}
	if err := settings.Load(ctx); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	clock := &fakeClock{base: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	factory := usecase.NewEntryUseCase(rates, settings, &sequenceIDs{}).WithClock(clock.Now)

	cfg := usecase.LedgerConfig{
		TxManager:      txManager,
		Balances:       balances,
		BalanceRepo:    memory.NewBalanceRepository(store),
		EntryRepo:      memory.NewEntryRepository(store),
		Logger:         logger,
		AllowOverdraft: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	ledger := usecase.NewLedgerUseCase(cfg)

	entryRepo := memory.NewEntryRepository(store)
	return &testWallet{
		store:     store,
		balances:  balances,
		rates:     rates,
		settings:  settings,
		factory:   factory,
		ledger:    ledger,
		log:       usecase.NewTransactionLogUseCase(entryRepo),
		movements: usecase.NewMovementUseCase(factory, ledger, balances, rates),
		reports:   usecase.NewReportUseCase(entryRepo, balances),
		clock:     clock,
	}
}

func (w *testWallet) balance(t *testing.T, currency string) decimal.Decimal {
	t.Helper()

	balances, err := w.balances.GetBalances(context.Background())
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	return balances.Get(currency)
}

func (w *testWallet) entries(t *testing.T) []*domain.Entry {
	t.Helper()

	entries, err := w.log.GetTx(context.Background())
	if err != nil {
		t.Fatalf("get tx: %v", err)
	}
	return entries
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decimalEq matches a decimal.Decimal by value rather than representation.
type decimalEq struct {
	want decimal.Decimal
}

func decEq(v int64) decimalEq {
	return decimalEq{want: decimal.NewFromInt(v)}
}

func (m decimalEq) Matches(x any) bool {
	got, ok := x.(decimal.Decimal)
	return ok && got.Equal(m.want)
}

func (m decimalEq) String() string {
	return "is equal to " + m.want.String()
}
