package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/fxwallet/internal/domain"
)

// ErrInconsistentLedger is returned when a logged entry's FX snapshot does not
// add up or the log is out of order.
var ErrInconsistentLedger = errors.New("ledger is inconsistent")

// ReportUseCase builds read-only reports over the transaction log.
type ReportUseCase struct {
	entryRepo EntryRepository
	balances  BalanceReader
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(entryRepo EntryRepository, balances BalanceReader) *ReportUseCase {
	return &ReportUseCase{
		entryRepo: entryRepo,
		balances:  balances,
	}
}

// SummaryResult holds per-currency totals next to the current balances.
type SummaryResult struct {
	GeneratedAt time.Time
	Balances    domain.Balances
	Currencies  []domain.CurrencySummary
}

// Summary aggregates the entries matching filter by currency. Pagination in
// the filter is ignored.
func (uc *ReportUseCase) Summary(ctx context.Context, filter domain.EntryFilter) (*SummaryResult, error) {
	entries, err := uc.entryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	balances, err := uc.balances.GetBalances(ctx)
	if err != nil {
		return nil, err
	}

	filter.Limit, filter.Offset = 0, 0

	return &SummaryResult{
		GeneratedAt: time.Now().UTC(),
		Balances:    balances,
		Currencies:  domain.Summarize(filter.Apply(entries)),
	}, nil
}

// CheckConsistency verifies every logged entry. The report is returned
// together with ErrInconsistentLedger when a problem is found.
func (uc *ReportUseCase) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	entries, err := uc.entryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := domain.CheckLog(entries)
	if !report.Consistent() {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
