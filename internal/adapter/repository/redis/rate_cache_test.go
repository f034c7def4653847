package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/domain"
)

type countingRateRepo struct {
	record  *domain.PersistedRates
	loads   int
	saves   int
	loadErr error
}

func (r *countingRateRepo) Load(ctx context.Context) (*domain.PersistedRates, error) {
	r.loads++
	return r.record, r.loadErr
}

func (r *countingRateRepo) Save(ctx context.Context, record *domain.PersistedRates) error {
	r.saves++
	r.record = record
	return nil
}

func TestRateCacheReadThrough(t *testing.T) {
	client, mr := newTestRedisClient(t)

	repo := &countingRateRepo{record: &domain.PersistedRates{
		Version: 4,
		Payload: []byte(`{"USD":{"NGN":"1650"}}`),
	}}
	cache := NewRateCache(repo, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record, err := cache.Load(ctx)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if record.Version != 4 {
			t.Fatalf("expected version 4, got %d", record.Version)
		}
	}

	if repo.loads != 1 {
		t.Fatalf("expected a single repository load, got %d", repo.loads)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := cache.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if repo.loads != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", repo.loads)
	}
}

func TestRateCacheSaveRefreshes(t *testing.T) {
	client, _ := newTestRedisClient(t)

	repo := &countingRateRepo{}
	cache := NewRateCache(repo, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if err := cache.Save(ctx, &domain.PersistedRates{Version: 7, Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	record, err := cache.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if record.Version != 7 || repo.loads != 0 {
		t.Fatalf("expected cached version 7 without repository load, got %d after %d loads", record.Version, repo.loads)
	}
}

func TestRateCacheMissingRecordNotCached(t *testing.T) {
	client, mr := newTestRedisClient(t)

	cache := NewRateCache(&countingRateRepo{}, client, time.Minute, zerolog.Nop())

	record, err := cache.Load(context.Background())
	if err != nil || record != nil {
		t.Fatalf("expected nil record, got %v err=%v", record, err)
	}
	if mr.Exists(cache.key) {
		t.Fatalf("nil record must not be cached")
	}
}

func TestRateCacheFallsBackWhenRedisDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	mr.Close()

	repo := &countingRateRepo{record: &domain.PersistedRates{Version: 1, Payload: []byte(`{}`)}}
	cache := NewRateCache(repo, client, time.Minute, zerolog.Nop())

	record, err := cache.Load(context.Background())
	if err != nil || record == nil || record.Version != 1 {
		t.Fatalf("expected repository record, got %v err=%v", record, err)
	}
}

func TestRateCachePropagatesRepositoryError(t *testing.T) {
	client, _ := newTestRedisClient(t)

	repoErr := errors.New("db down")
	cache := NewRateCache(&countingRateRepo{loadErr: repoErr}, client, time.Minute, zerolog.Nop())

	if _, err := cache.Load(context.Background()); !errors.Is(err, repoErr) {
		t.Fatalf("expected %v, got %v", repoErr, err)
	}
}
