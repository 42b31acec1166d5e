package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore implements domain.CounterStore on a shared Redis instance,
// so request counts are consistent across service replicas. The increment
// and the expiry are pipelined into one round trip; INCR creates the bucket
// implicitly on first use and EXPIREAT pins its lifetime to the window
// boundary, after which Redis discards it on its own.
type CounterStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCounterStore creates a Redis-backed counter store.
func NewCounterStore(client *redis.Client, logger *slog.Logger) *CounterStore {
	return &CounterStore{
		client: client,
		logger: logger.With("component", "redis_counter_store"),
	}
}

// Increment atomically bumps the counter at key and returns the new count.
// Errors are returned as-is; the admission controller converts them into
// its fail-open default.
func (s *CounterStore) Increment(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, expireAt)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	return incr.Val(), nil
}
