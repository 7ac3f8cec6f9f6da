package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultPostgresTable is the table Postgres adapters use unless overridden.
const DefaultPostgresTable = "simplerstate_kv"

// Postgres adapts a pgx pool to the storage contract. All values live in a
// single two-column table keyed by the entity's persistence key.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres wraps pool. table falls back to DefaultPostgresTable when empty.
func NewPostgres(pool *pgxpool.Pool, table string) *Postgres {
	if table == "" {
		table = DefaultPostgresTable
	}
	return &Postgres{pool: pool, table: table}
}

// Migrate creates the backing table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)`, p.table,
	))
	if err != nil {
		return fmt.Errorf("storage: postgres migrate %s: %w", p.table, err)
	}
	return nil
}

// GetItem returns the value stored under key, or ErrMiss.
func (p *Postgres) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := p.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT value FROM %s WHERE key = $1`, p.table,
	), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("storage: postgres get %q: %w", key, err)
	}
	return value, nil
}

// SetItem upserts value under key.
func (p *Postgres) SetItem(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, p.table,
	), key, value)
	if err != nil {
		return fmt.Errorf("storage: postgres set %q: %w", key, err)
	}
	return nil
}
