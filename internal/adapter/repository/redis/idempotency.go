package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore implements usecase.IdempotencyStore using Redis. It is an
// advisory fast path in front of the database unique constraint: a miss or a
// Redis failure only means the duplicate is caught one layer lower.
type IdempotencyStore struct {
	cache *Cache
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		cache: NewCache(client, "idempotency:"),
	}
}

// Lookup returns the transaction ID recorded for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	id, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, err
	}

	return id, true, nil
}

// Record stores the committed transaction ID under key. SetNX keeps the
// first writer's value if two commits race, matching what the database
// constraint already decided.
func (s *IdempotencyStore) Record(ctx context.Context, key, transactionID string, ttl time.Duration) error {
	_, err := s.cache.SetNX(ctx, key, transactionID, ttl)

	return err
}
