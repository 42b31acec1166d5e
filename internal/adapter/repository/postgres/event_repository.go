package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/flagpost/flagpost/internal/domain"
)

// EventRepository implements the append-only domain.EventRepository sink
// for PostgreSQL.
type EventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEventRepository creates a new PostgreSQL event repository.
func NewEventRepository(db *sql.DB, logger *slog.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger.With("component", "event_repository")}
}

// AppendBatch writes a batch of audit events using the COPY protocol, which
// keeps the per-event cost flat for the bounded batch sizes the API admits.
// Events are append-only; there is no conflict handling because IDs are
// server-assigned.
func (r *EventRepository) AppendBatch(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event batch transaction: %w", err)
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	stmt, err := txn.Prepare(pq.CopyIn("events", "id", "ts", "caller", "flag_key", "decision", "user_id", "metadata"))
	if err != nil {
		return fmt.Errorf("failed to prepare event copy: %w", err)
	}

	for _, event := range events {
		var userID sql.NullString
		if event.UserID != "" {
			userID = sql.NullString{String: event.UserID, Valid: true}
		}
		var metadata any
		if len(event.Metadata) > 0 {
			metadata = string(event.Metadata)
		}

		if _, err := stmt.ExecContext(ctx, event.ID, event.TS, event.Caller, event.FlagKey, event.Decision, userID, metadata); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("failed to stage event %s: %w", event.ID, err)
		}
	}

	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to flush event copy: %w", err)
	}
	return txn.Commit()
}
