package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/infrastructure/postgres/generated"
	"github.com/iho/fxwallet/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return newEntryRepository(pool)
}

func newEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Append inserts entry.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(domain.NormalizeMetadata(entry.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata of entry %s: %w", entry.ID, err)
	}

	return r.queries.WithTx(ptx.PgxTx()).CreateEntry(ctx, generated.CreateEntryParams{
		ID:           entry.ID,
		Type:         string(entry.Type),
		Title:        entry.Title,
		Icon:         entry.Icon,
		Currency:     entry.Currency,
		Amount:       decimalToNumeric(entry.Amount),
		BaseCurrency: entry.BaseCurrency,
		BaseEquiv:    decimalToNumeric(entry.BaseEquiv),
		FxRateUsed:   decimalToNumeric(entry.FXRateUsed),
		Metadata:     metadata,
		CreatedAt:    timeToPgTimestamptz(entry.CreatedAt),
	})
}

// List returns every entry, most recent first.
func (r *EntryRepository) List(ctx context.Context) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

func rowToEntry(row generated.Entry) *domain.Entry {
	var metadata map[string]any
	if len(row.Metadata) > 0 {
		// unreadable metadata is dropped rather than hiding the entry
		_ = json.Unmarshal(row.Metadata, &metadata)
	}

	return &domain.Entry{
		ID:           row.ID,
		Type:         domain.EntryType(row.Type),
		Title:        row.Title,
		Icon:         row.Icon,
		Currency:     row.Currency,
		Amount:       numericToDecimal(row.Amount),
		BaseCurrency: row.BaseCurrency,
		BaseEquiv:    numericToDecimal(row.BaseEquiv),
		FXRateUsed:   numericToDecimal(row.FxRateUsed),
		Metadata:     domain.NormalizeMetadata(metadata),
		CreatedAt:    row.CreatedAt.Time.UTC(),
	}
}
