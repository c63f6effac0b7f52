package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/labtrack/labtrack/internal/snapshot"
)

// KV implements snapshot.Store on the snapshots table.
type KV struct {
	db *DB
}

// NewKV creates a new KV store over the database.
func NewKV(db *DB) *KV {
	return &KV{db: db}
}

// Get returns the value stored under key.
func (r *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", key, err)
	}
	return value, nil
}

// Set writes value under key, replacing any previous value.
func (r *KV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO snapshots (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", key, err)
	}
	return nil
}
