package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/domain"
)

// LedgerUseCase is the ledger engine, the only writer of balances. Applying an
// entry updates the balance of the entry's currency and appends the entry to
// the transaction log in one storage transaction.
type LedgerUseCase struct {
	txManager      TransactionManager
	balances       *BalanceUseCase
	balanceRepo    BalanceRepository
	entryRepo      EntryRepository
	retrier        Retrier
	metrics        LedgerMetrics
	logger         zerolog.Logger
	allowOverdraft bool

	// mu serializes the read-modify-write of balances.
	mu sync.Mutex
}

// LedgerConfig holds the LedgerUseCase dependencies.
type LedgerConfig struct {
	TxManager      TransactionManager
	Balances       *BalanceUseCase
	BalanceRepo    BalanceRepository
	EntryRepo      EntryRepository
	Retrier        Retrier // optional
	Metrics        LedgerMetrics
	Logger         zerolog.Logger
	AllowOverdraft bool
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}
	return &LedgerUseCase{
		txManager:      cfg.TxManager,
		balances:       cfg.Balances,
		balanceRepo:    cfg.BalanceRepo,
		entryRepo:      cfg.EntryRepo,
		retrier:        cfg.Retrier,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		allowOverdraft: cfg.AllowOverdraft,
	}
}

// ApplyEntry applies a single entry and returns it. On error nothing has been
// written. The same entry must not be applied twice.
func (uc *LedgerUseCase) ApplyEntry(ctx context.Context, entry *domain.Entry) (*domain.Entry, error) {
	applied, err := uc.ApplyEntries(ctx, entry)
	if err != nil {
		return nil, err
	}

	return applied[0], nil
}

// ApplyEntries applies entries atomically, in order: either all of them are
// reflected in balances and the log, or none is.
func (uc *LedgerUseCase) ApplyEntries(ctx context.Context, entries ...*domain.Entry) ([]*domain.Entry, error) {
	return uc.apply(ctx, uc.allowOverdraft, entries)
}

// ApplyFunded is ApplyEntries with overdraft refused regardless of the ledger
// policy. The balance check runs under the ledger lock, so concurrent debits
// cannot both spend the same funds.
func (uc *LedgerUseCase) ApplyFunded(ctx context.Context, entries ...*domain.Entry) ([]*domain.Entry, error) {
	return uc.apply(ctx, false, entries)
}

func (uc *LedgerUseCase) apply(ctx context.Context, allowOverdraft bool, entries []*domain.Entry) ([]*domain.Entry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", domain.ErrInvalidEntry)
	}

	for _, e := range entries {
		if err := domain.ValidateEntry(e); err != nil {
			uc.metrics.EntryRejected("invalid_entry")
			return nil, err
		}
	}

	start := time.Now()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	current, err := uc.balances.GetBalances(ctx)
	if err != nil {
		return nil, err
	}

	// 1. Compute new balances for every touched currency
	next := current.Clone()
	var touched []string
	for _, e := range entries {
		balance, err := next.ApplyAmount(e.Currency, e.Amount, allowOverdraft)
		if err != nil {
			uc.metrics.EntryRejected("insufficient_funds")
			return nil, err
		}
		if !slices.Contains(touched, e.Currency) {
			touched = append(touched, e.Currency)
		}
		next[e.Currency] = balance
	}

	// 2. Persist balances and log rows together
	persist := func() error {
		return uc.persist(ctx, entries, next, touched)
	}
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, persist)
	} else {
		err = persist()
	}
	if err != nil {
		uc.metrics.EntryRejected("storage")
		return nil, err
	}

	duration := time.Since(start)
	for _, c := range touched {
		uc.metrics.BalanceChanged(c, next[c])
	}
	for _, e := range entries {
		uc.metrics.EntryApplied(e, duration)
		uc.logger.Info().
			Str("entry_id", e.ID).
			Str("type", string(e.Type)).
			Str("currency", e.Currency).
			Str("amount", e.Amount.String()).
			Str("balance", next[e.Currency].String()).
			Msg("entry applied")
	}

	return entries, nil
}

func (uc *LedgerUseCase) persist(ctx context.Context, entries []*domain.Entry, next domain.Balances, touched []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, c := range touched {
		if err := uc.balanceRepo.Upsert(ctx, tx, c, next[c]); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if err := uc.entryRepo.Append(ctx, tx, e); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ResetBalances replaces the stored balances wholesale while holding the
// ledger lock, so that it cannot interleave with entry application.
func (uc *LedgerUseCase) ResetBalances(ctx context.Context, balances domain.Balances) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.balances.SetBalances(ctx, balances); err != nil {
		return err
	}

	if balances != nil {
		uc.logger.Warn().Strs("currencies", balances.Currencies()).Msg("balances reset")
	}

	return nil
}
