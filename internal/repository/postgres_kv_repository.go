package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
    key TEXT PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresKeyValue persists values in a single kv_store table.
type PostgresKeyValue struct {
	db *sqlx.DB
}

// NewPostgresKeyValue constructs a Postgres-backed substrate.
func NewPostgresKeyValue(db *sqlx.DB) *PostgresKeyValue {
	return &PostgresKeyValue{db: db}
}

// EnsureSchema creates the kv_store table when missing.
func (r *PostgresKeyValue) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, kvSchema); err != nil {
		return fmt.Errorf("ensure kv schema: %w", err)
	}
	return nil
}

// Get loads the value for key.
func (r *PostgresKeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := r.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = $1`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value for key. Last writer wins.
func (r *PostgresKeyValue) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}
