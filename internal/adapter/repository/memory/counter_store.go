// Package memory provides a process-local counter store used when no
// shared store is configured.
package memory

import (
	"context"
	"sync"
	"time"
)

// Expired buckets are swept lazily once the map grows past this size.
const sweepThreshold = 4096

type entry struct {
	count     int64
	expiresAt time.Time
}

// CounterStore implements domain.CounterStore with an in-process map.
// It is explicitly non-durable: counts reset on process restart and are
// never shared across instances, so it only approximates the remote store
// for single-process deployments and tests. Correctness across processes
// must never rely on it.
type CounterStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewCounterStore creates an empty in-process counter store.
func NewCounterStore() *CounterStore {
	return &CounterStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Increment bumps the counter at key and returns the new count. A bucket
// whose expiry has passed is restarted from zero.
func (s *CounterStore) Increment(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.expiresAt) {
		e = entry{expiresAt: expireAt}
	}
	e.count++
	s.entries[key] = e

	if len(s.entries) > sweepThreshold {
		s.sweep(now)
	}
	return e.count, nil
}

// sweep removes expired buckets. Caller must hold the lock.
func (s *CounterStore) sweep(now time.Time) {
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
