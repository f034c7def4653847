package usecase

import (
	"context"

	"github.com/iho/fxwallet/internal/domain"
)

// TransactionLogUseCase answers queries over the transaction log.
type TransactionLogUseCase struct {
	entryRepo EntryRepository
}

// NewTransactionLogUseCase creates a new TransactionLogUseCase.
func NewTransactionLogUseCase(entryRepo EntryRepository) *TransactionLogUseCase {
	return &TransactionLogUseCase{
		entryRepo: entryRepo,
	}
}

// GetTx returns every applied entry, most recent first.
func (uc *TransactionLogUseCase) GetTx(ctx context.Context) ([]*domain.Entry, error) {
	return uc.entryRepo.List(ctx)
}

// Filter returns the entries matching filter, keeping the log's order.
func (uc *TransactionLogUseCase) Filter(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	entries, err := uc.entryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return filter.Apply(entries), nil
}
