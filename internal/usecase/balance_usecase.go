package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/domain"
)

// BalanceUseCase is the balance store: it reads the balances record,
// repairing it on the way, and replaces it wholesale.
type BalanceUseCase struct {
	balanceRepo BalanceRepository
	txManager   TransactionManager
	currencies  domain.CurrencySet
	metrics     LedgerMetrics
	logger      zerolog.Logger
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	balanceRepo BalanceRepository,
	txManager TransactionManager,
	currencies domain.CurrencySet,
	metrics LedgerMetrics,
	logger zerolog.Logger,
) *BalanceUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &BalanceUseCase{
		balanceRepo: balanceRepo,
		txManager:   txManager,
		currencies:  currencies,
		metrics:     metrics,
		logger:      logger,
	}
}

// Currencies returns the supported currency set.
func (uc *BalanceUseCase) Currencies() domain.CurrencySet {
	return uc.currencies
}

// GetBalances returns the balance of every supported currency. Missing or
// corrupt stored values are replaced by their opening balance and the repaired
// record is written back before returning. Only storage I/O errors are returned.
func (uc *BalanceUseCase) GetBalances(ctx context.Context) (domain.Balances, error) {
	raw, err := uc.balanceRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	balances, repaired := domain.RepairBalances(raw, uc.currencies)
	if len(repaired) == 0 {
		return balances, nil
	}

	uc.metrics.StateRepaired(recordBalances)
	uc.logger.Warn().
		Strs("currencies", repaired).
		Err(domain.ErrMalformedPersistedState).
		Msg("repairing stored balances")

	if err := uc.replace(ctx, balances); err != nil {
		// the repaired values are still correct for this read; the next read retries the write
		uc.logger.Error().Err(err).Msg("failed to persist repaired balances")
	}

	return balances, nil
}

// SetBalances replaces the stored balances. A nil map is a no-op.
// It does not serialize with entry application; LedgerUseCase.ResetBalances does.
func (uc *BalanceUseCase) SetBalances(ctx context.Context, balances domain.Balances) error {
	if balances == nil {
		return nil
	}

	normalized := make(domain.Balances, len(balances))
	for c, amount := range balances {
		if c = domain.NormalizeCurrency(c); c != "" {
			normalized[c] = amount
		}
	}

	if err := uc.replace(ctx, normalized); err != nil {
		return err
	}

	for c, amount := range normalized {
		uc.metrics.BalanceChanged(c, amount)
	}

	return nil
}

func (uc *BalanceUseCase) replace(ctx context.Context, balances domain.Balances) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.balanceRepo.Replace(ctx, tx, balances); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
