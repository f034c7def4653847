package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fxwallet/internal/infrastructure/postgres/generated"
)

// SettingsRepository implements usecase.SettingsRepository.
type SettingsRepository struct {
	queries *generated.Queries
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return newSettingsRepository(pool)
}

func newSettingsRepository(db generated.DBTX) *SettingsRepository {
	return &SettingsRepository{queries: generated.New(db)}
}

// Get returns a setting.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.queries.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	return value, true, nil
}

// Set stores a setting.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	return r.queries.SetSetting(ctx, generated.SetSettingParams{Key: key, Value: value})
}
