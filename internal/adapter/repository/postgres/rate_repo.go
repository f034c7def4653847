package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/postgres/generated"
)

// RateRepository implements usecase.RateRepository. The table is a single
// row whose payload is a JSONB object.
type RateRepository struct {
	queries *generated.Queries
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return newRateRepository(pool)
}

func newRateRepository(db generated.DBTX) *RateRepository {
	return &RateRepository{queries: generated.New(db)}
}

// Load returns the stored table, or nil when none has been saved.
func (r *RateRepository) Load(ctx context.Context) (*domain.PersistedRates, error) {
	row, err := r.queries.GetRateTable(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &domain.PersistedRates{
		Version:   int(row.Version),
		UpdatedAt: row.UpdatedAt.Time,
		Payload:   row.Payload,
	}, nil
}

// Save replaces the stored table.
func (r *RateRepository) Save(ctx context.Context, record *domain.PersistedRates) error {
	return r.queries.SaveRateTable(ctx, generated.SaveRateTableParams{
		Version:   int32(record.Version),
		Payload:   record.Payload,
		UpdatedAt: timeToPgTimestamptz(record.UpdatedAt),
	})
}
