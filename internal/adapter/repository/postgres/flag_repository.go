package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/flagpost/flagpost/internal/domain"
)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

const flagColumns = "id, key, description, enabled, version, updated_at"

// FlagRepository implements domain.FlagRepository using PostgreSQL.
type FlagRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFlagRepository creates a new PostgreSQL flag repository.
func NewFlagRepository(db *sql.DB, logger *slog.Logger) *FlagRepository {
	return &FlagRepository{db: db, logger: logger.With("component", "flag_repository")}
}

// Create inserts a new flag at version 1. The unique constraint on key is
// the source of truth for duplicates; a violation surfaces as ErrConflict
// and the existing record is untouched.
func (r *FlagRepository) Create(ctx context.Context, key, description string, enabled bool) (domain.Flag, error) {
	query := `
		INSERT INTO flags (id, key, description, enabled, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, NOW())
		RETURNING ` + flagColumns

	row := r.db.QueryRowContext(ctx, query, uuid.NewString(), key, description, enabled)
	flag, err := scanFlag(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Flag{}, domain.ErrConflict
		}
		r.logger.Error("failed to create flag", "error", err, "key", key)
		return domain.Flag{}, fmt.Errorf("failed to create flag: %w", err)
	}
	return flag, nil
}

// GetByKey returns the flag for a key, or ErrNotFound.
func (r *FlagRepository) GetByKey(ctx context.Context, key string) (domain.Flag, error) {
	query := `SELECT ` + flagColumns + ` FROM flags WHERE key = $1`

	flag, err := scanFlag(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Flag{}, domain.ErrNotFound
		}
		r.logger.Error("failed to get flag", "error", err, "key", key)
		return domain.Flag{}, fmt.Errorf("failed to get flag: %w", err)
	}
	return flag, nil
}

// List returns flags ordered by most recently updated first. The limit is
// clamped to 200; a non-positive limit selects the default page size.
func (r *FlagRepository) List(ctx context.Context, limit int) ([]domain.Flag, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 200 {
		limit = 200
	}

	query := `SELECT ` + flagColumns + ` FROM flags ORDER BY updated_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("failed to list flags", "error", err)
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	defer rows.Close()

	flags := make([]domain.Flag, 0, limit)
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flag row: %w", err)
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flag rows: %w", err)
	}
	return flags, nil
}

// Patch overwrites the provided fields and leaves omitted ones unchanged
// via COALESCE against the stored value, so a nil field can never clear a
// column. Version and updated_at are bumped unconditionally on every
// successful patch, even when no field value actually changed. There is no
// compare-and-swap: concurrent patches interleave and the final version
// reflects the number of successful patches.
func (r *FlagRepository) Patch(ctx context.Context, key string, patch domain.FlagPatch) (domain.Flag, error) {
	query := `
		UPDATE flags
		SET description = COALESCE($2, description),
		    enabled = COALESCE($3, enabled),
		    version = version + 1,
		    updated_at = NOW()
		WHERE key = $1
		RETURNING ` + flagColumns

	row := r.db.QueryRowContext(ctx, query, key, patch.Description, patch.Enabled)
	flag, err := scanFlag(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Flag{}, domain.ErrNotFound
		}
		r.logger.Error("failed to patch flag", "error", err, "key", key)
		return domain.Flag{}, fmt.Errorf("failed to patch flag: %w", err)
	}
	return flag, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlag(row rowScanner) (domain.Flag, error) {
	var flag domain.Flag
	err := row.Scan(&flag.ID, &flag.Key, &flag.Description, &flag.Enabled, &flag.Version, &flag.UpdatedAt)
	return flag, err
}
