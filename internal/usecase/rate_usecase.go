package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

// RateUseCase owns the session's rate table. Lookups are served from memory;
// the table is read from storage by Load and written by ReplaceRates/SetRate.
type RateUseCase struct {
	rateRepo RateRepository
	seed     *domain.RateTable
	metrics  LedgerMetrics
	logger   zerolog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	table *domain.RateTable
}

// NewRateUseCase creates a new RateUseCase. seed is the table used when
// nothing usable is stored.
func NewRateUseCase(rateRepo RateRepository, seed *domain.RateTable, metrics LedgerMetrics, logger zerolog.Logger) *RateUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &RateUseCase{
		rateRepo: rateRepo,
		seed:     seed.Clone(),
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		table:    seed.Clone(),
	}
}

// Load reads the stored table. A missing or malformed record is replaced by
// the seed table, bad pairs are dropped, and the result is written back.
// Only storage I/O errors are returned.
func (uc *RateUseCase) Load(ctx context.Context) error {
	record, err := uc.rateRepo.Load(ctx)
	if err != nil {
		return err
	}

	table, clean := domain.DecodeRates(record)
	switch {
	case record == nil:
		table = uc.seed.Clone()
		uc.logger.Info().Int("pairs", len(table.Pairs())).Msg("seeding rate table")
	case table == nil:
		table = uc.seed.Clone()
		uc.metrics.StateRepaired(recordRates)
		uc.logger.Warn().Err(domain.ErrMalformedPersistedState).Msg("stored rate table unreadable, falling back to seed")
	case !clean:
		uc.metrics.StateRepaired(recordRates)
		uc.logger.Warn().Err(domain.ErrMalformedPersistedState).Int("version", table.Version).Msg("dropped invalid pairs from stored rate table")
	}

	if record == nil || !clean {
		if err := uc.rateRepo.Save(ctx, domain.EncodeRates(table)); err != nil {
			uc.logger.Error().Err(err).Msg("failed to persist rate table")
		}
	}

	uc.mu.Lock()
	uc.table = table
	uc.mu.Unlock()

	return nil
}

// Table returns a copy of the current table.
func (uc *RateUseCase) Table() *domain.RateTable {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.table.Clone()
}

// Resolve looks up a pair. A defaulted resolution is logged as an approximation.
func (uc *RateUseCase) Resolve(from, to string) domain.RateResolution {
	uc.mu.RLock()
	res := uc.table.Resolve(from, to)
	uc.mu.RUnlock()

	uc.metrics.RateResolved(res.Source)
	if res.Approximate() {
		uc.logger.Warn().
			Str("from", res.From).
			Str("to", res.To).
			Err(domain.ErrUnresolvableRate).
			Msg("using 1:1 approximation")
	}

	return res
}

// Rate returns the multiplier for from→to.
func (uc *RateUseCase) Rate(from, to string) decimal.Decimal {
	return uc.Resolve(from, to).Rate
}

// Convert converts amount from one currency to another.
func (uc *RateUseCase) Convert(from, to string, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(uc.Rate(from, to))
}

// ReplaceRates stores a new table built from rates. Every multiplier must be
// positive. The version is bumped and the update time stamped.
func (uc *RateUseCase) ReplaceRates(ctx context.Context, rates map[string]map[string]decimal.Decimal) (*domain.RateTable, error) {
	for _, row := range rates {
		for _, rate := range row {
			if !rate.IsPositive() {
				return nil, domain.ErrInvalidRate
			}
		}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	next := domain.NewRateTable(uc.table.Version+1, uc.now(), rates)
	return uc.store(ctx, next)
}

// SetRate sets a single pair.
func (uc *RateUseCase) SetRate(ctx context.Context, from, to string, rate decimal.Decimal) (*domain.RateTable, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	next, err := uc.table.With(from, to, rate)
	if err != nil {
		return nil, err
	}
	next.Version = uc.table.Version + 1
	next.UpdatedAt = uc.now()

	return uc.store(ctx, next)
}

// store persists next and makes it current. Callers hold uc.mu.
func (uc *RateUseCase) store(ctx context.Context, next *domain.RateTable) (*domain.RateTable, error) {
	if err := uc.rateRepo.Save(ctx, domain.EncodeRates(next)); err != nil {
		return nil, err
	}

	uc.table = next
	uc.logger.Info().Int("version", next.Version).Int("pairs", len(next.Pairs())).Msg("rate table updated")

	return next.Clone(), nil
}
