package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a storage transaction.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessing is the value held by an idempotency key while its
	// first request is still running.
	IdempotencyProcessing = "processing"

	// settings keys
	baseCurrencyKey = "base_currency"

	// names of the persisted records, used in logs and metrics
	recordBalances     = "balances"
	recordRates        = "rates"
	recordBaseCurrency = "base_currency"
)
