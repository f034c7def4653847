package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// Amounts are stored as decimal text and times as unix nanoseconds.

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	db *sql.DB
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Load reads every row.
func (r *BalanceRepository) Load(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT currency, amount FROM balances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var currency, amount string
		if err := rows.Scan(&currency, &amount); err != nil {
			return nil, err
		}
		out[currency] = amount
	}

	return out, rows.Err()
}

// Replace deletes every row and writes balances.
func (r *BalanceRepository) Replace(ctx context.Context, tx usecase.Transaction, balances domain.Balances) error {
	stx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	if _, err := stx.ExecContext(ctx, `DELETE FROM balances`); err != nil {
		return err
	}

	for _, currency := range balances.Currencies() {
		if err := upsertBalance(ctx, stx, currency, balances[currency]); err != nil {
			return err
		}
	}

	return nil
}

// Upsert writes one currency.
func (r *BalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, currency string, amount decimal.Decimal) error {
	stx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	return upsertBalance(ctx, stx, currency, amount)
}

// PutRaw stores value without validation, as a corrupted record would.
func (r *BalanceRepository) PutRaw(ctx context.Context, currency, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO balances (currency, amount, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (currency) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		currency, value, time.Now().UnixNano())
	return err
}

func upsertBalance(ctx context.Context, tx *sql.Tx, currency string, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO balances (currency, amount, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (currency) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		currency, amount.String(), time.Now().UnixNano())
	return err
}

// RateRepository implements usecase.RateRepository.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// Load returns the stored table, or nil when none has been saved.
func (r *RateRepository) Load(ctx context.Context) (*domain.PersistedRates, error) {
	var (
		version   int
		payload   []byte
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT version, payload, updated_at FROM rate_tables WHERE id = 1`).
		Scan(&version, &payload, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &domain.PersistedRates{
		Version:   version,
		Payload:   payload,
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}, nil
}

// Save replaces the stored table.
func (r *RateRepository) Save(ctx context.Context, record *domain.PersistedRates) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rate_tables (id, version, payload, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET version = excluded.version, payload = excluded.payload, updated_at = excluded.updated_at`,
		record.Version, record.Payload, record.UpdatedAt.UnixNano())
	return err
}

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Append inserts entry.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	stx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(domain.NormalizeMetadata(entry.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata of entry %s: %w", entry.ID, err)
	}

	_, err = stx.ExecContext(ctx, `
		INSERT INTO entries (id, type, title, icon, currency, amount, base_currency, base_equiv, fx_rate_used, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		string(entry.Type),
		entry.Title,
		entry.Icon,
		entry.Currency,
		entry.Amount.String(),
		entry.BaseCurrency,
		entry.BaseEquiv.String(),
		entry.FXRateUsed.String(),
		string(metadata),
		entry.CreatedAt.UnixNano(),
	)
	return err
}

// List returns every entry, most recent first.
func (r *EntryRepository) List(ctx context.Context) ([]*domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, title, icon, currency, amount, base_currency, base_equiv, fx_rate_used, metadata, created_at
		FROM entries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		var (
			e                         domain.Entry
			entryType, metadata       string
			amount, baseEquiv, fxRate string
			createdAt                 int64
		)
		if err := rows.Scan(&e.ID, &entryType, &e.Title, &e.Icon, &e.Currency, &amount,
			&e.BaseCurrency, &baseEquiv, &fxRate, &metadata, &createdAt); err != nil {
			return nil, err
		}

		e.Type = domain.EntryType(entryType)
		e.Amount = parseDecimal(amount)
		e.BaseEquiv = parseDecimal(baseEquiv)
		e.FXRateUsed = parseDecimal(fxRate)
		e.CreatedAt = time.Unix(0, createdAt).UTC()

		var meta map[string]any
		_ = json.Unmarshal([]byte(metadata), &meta)
		e.Metadata = domain.NormalizeMetadata(meta)

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SettingsRepository implements usecase.SettingsRepository.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns a setting.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	return value, true, nil
}

// Set stores a setting.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixNano())
	return err
}
