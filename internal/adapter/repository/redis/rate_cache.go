package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/fxwallet/internal/domain"
	"github.com/iho/fxwallet/internal/usecase"
)

// RateCache is a read-through cache in front of a usecase.RateRepository.
// Redis failures are logged and the underlying repository is used instead.
type RateCache struct {
	next   usecase.RateRepository
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRateCache creates a new RateCache.
func NewRateCache(next usecase.RateRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RateCache {
	return &RateCache{
		next:   next,
		client: client,
		key:    "fxwallet:rates",
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cached record, filling the cache from the repository on a
// miss.
func (c *RateCache) Load(ctx context.Context) (*domain.PersistedRates, error) {
	cached, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case err == nil:
		var record domain.PersistedRates
		if jsonErr := json.Unmarshal(cached, &record); jsonErr == nil {
			return &record, nil
		}
		c.logger.Warn().Str("key", c.key).Msg("discarding unreadable cached rate table")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Msg("rate cache unavailable")
	}

	record, err := c.next.Load(ctx)
	if err != nil {
		return nil, err
	}
	if record != nil {
		c.fill(ctx, record)
	}

	return record, nil
}

// Save writes through to the repository and refreshes the cache.
func (c *RateCache) Save(ctx context.Context, record *domain.PersistedRates) error {
	if err := c.next.Save(ctx, record); err != nil {
		return err
	}

	c.fill(ctx, record)
	return nil
}

// Invalidate drops the cached record.
func (c *RateCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *RateCache) fill(ctx context.Context, record *domain.PersistedRates) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache rate table")
	}
}
