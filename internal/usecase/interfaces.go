package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxwallet/internal/domain"
)

// BalanceRepository persists the balances record.
type BalanceRepository interface {
	// Load returns the stored amount of every currency as text, so that
	// corrupt values reach the caller instead of failing the read.
	// It returns an empty map when nothing has been stored yet.
	Load(ctx context.Context) (map[string]string, error)
	// Replace overwrites the whole record.
	Replace(ctx context.Context, tx Transaction, balances domain.Balances) error
	// Upsert writes the balance of a single currency.
	Upsert(ctx context.Context, tx Transaction, currency string, amount decimal.Decimal) error
}

// RateRepository persists the rate table record.
type RateRepository interface {
	// Load returns nil when no table has been stored yet.
	Load(ctx context.Context) (*domain.PersistedRates, error)
	Save(ctx context.Context, record *domain.PersistedRates) error
}

// EntryRepository persists the transaction log.
type EntryRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.Entry) error
	// List returns every entry, most recent first.
	List(ctx context.Context) ([]*domain.Entry, error)
}

// SettingsRepository persists small key/value settings such as the active
// base currency.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation that failed with a transient storage error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// RateResolver resolves and applies exchange rates.
type RateResolver interface {
	Resolve(from, to string) domain.RateResolution
	Convert(from, to string, amount decimal.Decimal) decimal.Decimal
}

// BaseCurrencyProvider returns the currently active base currency.
type BaseCurrencyProvider interface {
	BaseCurrency() string
}

// LedgerMetrics records ledger activity.
type LedgerMetrics interface {
	EntryApplied(entry *domain.Entry, duration time.Duration)
	EntryRejected(reason string)
	BalanceChanged(currency string, balance decimal.Decimal)
	RateResolved(source domain.RateSource)
	StateRepaired(record string)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) EntryApplied(*domain.Entry, time.Duration)  {}
func (NopMetrics) EntryRejected(string)                       {}
func (NopMetrics) BalanceChanged(string, decimal.Decimal)     {}
func (NopMetrics) RateResolved(domain.RateSource)             {}
func (NopMetrics) StateRepaired(string)                       {}
