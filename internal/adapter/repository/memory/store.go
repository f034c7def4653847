// Package memory keeps wallet state in process memory. It is the default
// storage for a single session and the fake used by tests.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// ErrTxClosed is returned when a committed or rolled back transaction is used.
var ErrTxClosed = errors.New("memory: transaction already closed")

// Store holds every record. Writes made through a Tx become visible on Commit.
type Store struct {
	mu       sync.RWMutex
	balances map[string]string
	rates    *domain.PersistedRates
	entries  []*domain.Entry // created_at desc, id desc
	settings map[string]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		balances: make(map[string]string),
		settings: make(map[string]string),
	}
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store}, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	store  *Store
	ops    []func(s *Store)
	closed bool
}

func (t *Tx) stage(op func(s *Store)) error {
	if t.closed {
		return ErrTxClosed
	}
	t.ops = append(t.ops, op)
	return nil
}

// Commit applies the buffered writes under the store lock.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.ops = nil
	return nil
}

// Rollback discards the buffered writes.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true
	t.ops = nil
	return nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, errors.New("memory: foreign transaction")
	}
	return mtx, nil
}

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	store *Store
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(store *Store) *BalanceRepository {
	return &BalanceRepository{store: store}
}

// Load returns a copy of the stored amounts.
func (r *BalanceRepository) Load(ctx context.Context) (map[string]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make(map[string]string, len(r.store.balances))
	for c, v := range r.store.balances {
		out[c] = v
	}
	return out, nil
}

// Replace overwrites the whole record.
func (r *BalanceRepository) Replace(ctx context.Context, tx usecase.Transaction, balances domain.Balances) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	stored := make(map[string]string, len(balances))
	for c, amount := range balances {
		stored[c] = amount.String()
	}
	return mtx.stage(func(s *Store) { s.balances = stored })
}

// Upsert writes one currency.
func (r *BalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, currency string, amount decimal.Decimal) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	value := amount.String()
	return mtx.stage(func(s *Store) { s.balances[currency] = value })
}

// PutRaw stores a raw value bypassing validation, as a corrupted record would.
func (r *BalanceRepository) PutRaw(currency, value string) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.balances[currency] = value
}

// RateRepository implements usecase.RateRepository.
type RateRepository struct {
	store *Store
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(store *Store) *RateRepository {
	return &RateRepository{store: store}
}

// Load returns the stored record or nil.
func (r *RateRepository) Load(ctx context.Context) (*domain.PersistedRates, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if r.store.rates == nil {
		return nil, nil
	}
	record := *r.store.rates
	record.Payload = append([]byte(nil), r.store.rates.Payload...)
	return &record, nil
}

// Save replaces the stored record.
func (r *RateRepository) Save(ctx context.Context, record *domain.PersistedRates) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := *record
	stored.Payload = append([]byte(nil), record.Payload...)
	r.store.rates = &stored
	return nil
}

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Append stores a copy of entry on commit. The log stays ordered by
// created_at then id, both descending, whatever order entries are applied in.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	stored := entry.Clone()
	return mtx.stage(func(s *Store) {
		i := slices.IndexFunc(s.entries, func(e *domain.Entry) bool { return stored.Newer(e) })
		if i < 0 {
			i = len(s.entries)
		}
		s.entries = slices.Insert(s.entries, i, stored)
	})
}

// List returns copies of the logged entries, most recent first.
func (r *EntryRepository) List(ctx context.Context) ([]*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Entry, len(r.store.entries))
	for i, e := range r.store.entries {
		out[i] = e.Clone()
	}
	return out, nil
}

// SettingsRepository implements usecase.SettingsRepository.
type SettingsRepository struct {
	store *Store
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Get returns a setting.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	v, ok := r.store.settings[key]
	return v, ok, nil
}

// Set stores a setting.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.settings[key] = value
	return nil
}
