package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors surfaced by the core components. Handlers map these to
// response codes; everything else is an opaque server error.
var (
	ErrNotFound    = errors.New("flag not found")
	ErrConflict    = errors.New("flag key already exists")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// FlagRepository defines the persistence operations for flags.
// Implementations back onto a relational table with a unique constraint on
// the key column.
type FlagRepository interface {
	// Create inserts a new flag at version 1. Returns ErrConflict if the
	// key is already taken; the existing record is left untouched.
	Create(ctx context.Context, key, description string, enabled bool) (Flag, error)

	// GetByKey returns the flag for a key, or ErrNotFound.
	GetByKey(ctx context.Context, key string) (Flag, error)

	// List returns flags ordered by updated_at descending.
	List(ctx context.Context, limit int) ([]Flag, error)

	// Patch applies the provided fields, bumps the version by exactly one
	// and refreshes updated_at, unconditionally, even when no field value
	// actually changed. Returns ErrNotFound for an unknown key.
	Patch(ctx context.Context, key string, patch FlagPatch) (Flag, error)
}

// EventRepository defines the append-only sink for audit events.
type EventRepository interface {
	AppendBatch(ctx context.Context, events []Event) error
}

// CounterStore is the seam for request admission counting. Increment
// atomically bumps the counter stored at key, arranging for it to expire at
// the given time, and returns the new count. No other read path exists.
type CounterStore interface {
	Increment(ctx context.Context, key string, expireAt time.Time) (int64, error)
}
