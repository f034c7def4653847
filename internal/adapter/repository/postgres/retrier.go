package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier implements usecase.Retrier with exponential backoff. Only errors
// accepted by its classifier are retried; everything else fails at once.
type Retrier struct {
	retryable       func(error) bool
	logger          zerolog.Logger
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

// NewRetrier creates a Retrier for PostgreSQL deadlocks and serialization
// failures.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return NewRetrierFor(IsRetryable, logger)
}

// NewRetrierFor creates a Retrier for the errors retryable accepts. The SQLite
// backend uses it with its busy check.
func NewRetrierFor(retryable func(error) bool, logger zerolog.Logger) *Retrier {
	return &Retrier{
		retryable:       retryable,
		logger:          logger,
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsedTime:  10 * time.Second,
	}
}

// Retry runs operation until it succeeds, fails with a non-retryable error,
// runs out of attempts or ctx is done.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err == nil || r.retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx), func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("ledger write conflicted, retrying")
	})
}

// IsRetryable reports whether err is a PostgreSQL deadlock or serialization
// failure.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
	}
	return false
}
