package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func fastRetrier(retryable func(error) bool, maxRetries uint64) *Retrier {
	r := NewRetrierFor(retryable, zerolog.Nop())
	r.maxRetries = maxRetries
	r.initialInterval = time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second
	return r
}

func TestRetrier(t *testing.T) {
	deadlock := &pgconn.PgError{Code: pgErrDeadlock}
	conflict := &pgconn.PgError{Code: pgErrSerializationFailure}
	permanent := errors.New("permanent")

	tests := []struct {
		name         string
		failures     []error // returned by successive attempts, then nil
		maxRetries   uint64
		wantErr      error
		wantAttempts int
	}{
		{"succeeds first time", nil, 3, nil, 1},
		{"retries a deadlock", []error{deadlock}, 3, nil, 2},
		{"retries wrapped serialization failures", []error{fmt.Errorf("upsert: %w", conflict), conflict}, 3, nil, 3},
		{"stops on permanent error", []error{permanent, permanent}, 3, permanent, 1},
		{"gives up after max retries", []error{conflict, conflict, conflict, conflict}, 2, conflict, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := fastRetrier(IsRetryable, tt.maxRetries).Retry(context.Background(), func() error {
				attempts++
				if attempts <= len(tt.failures) {
					return tt.failures[attempts-1]
				}
				return nil
			})

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if attempts != tt.wantAttempts {
				t.Fatalf("expected %d attempts, got %d", tt.wantAttempts, attempts)
			}
		})
	}
}

func TestRetrierStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := fastRetrier(func(error) bool { return true }, 10).Retry(ctx, func() error {
		attempts++
		return errors.New("busy")
	})

	if err == nil {
		t.Fatal("expected an error once the context is done")
	}
	if attempts > 1 {
		t.Fatalf("expected no retries after cancellation, got %d attempts", attempts)
	}
}

func TestRetrierUsesClassifier(t *testing.T) {
	busy := errors.New("database is locked")

	attempts := 0
	err := fastRetrier(func(err error) bool { return errors.Is(err, busy) }, 3).Retry(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return busy
		}
		return nil
	})

	if err != nil || attempts != 2 {
		t.Fatalf("expected success on the second attempt, got err=%v attempts=%d", err, attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&pgconn.PgError{Code: pgErrDeadlock}, true},
		{&pgconn.PgError{Code: pgErrSerializationFailure}, true},
		{&pgconn.PgError{Code: "23505"}, false},
		{errors.New("other"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
