package sessionpg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tyemirov/storefront/internal/session"
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// Backend persists session keys in PostgreSQL through a pgx pool.
type Backend struct {
	pool querier
	now  func() time.Time
}

// NewBackend constructs a Backend on top of pool (usually a *pgxpool.Pool).
func NewBackend(pool querier) *Backend {
	return &Backend{pool: pool, now: time.Now}
}

// Scope returns the storage for namespace.
func (backend *Backend) Scope(namespace string) session.Storage {
	return &storage{backend: backend, namespace: namespace}
}

type storage struct {
	backend   *Backend
	namespace string
}

func (storage *storage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	row := storage.backend.pool.QueryRow(ctx, `
SELECT value
FROM session_entries
WHERE namespace = $1 AND entry_key = $2
`, storage.namespace, key)
	if scanErr := row.Scan(&value); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session_store.get.pgx: %w", scanErr)
	}
	return value, true, nil
}

func (storage *storage) Set(ctx context.Context, key string, value string) error {
	_, err := storage.backend.pool.Exec(ctx, `
INSERT INTO session_entries (namespace, entry_key, value, updated_at_unix)
VALUES ($1, $2, $3, $4)
ON CONFLICT (namespace, entry_key)
DO UPDATE SET value = EXCLUDED.value, updated_at_unix = EXCLUDED.updated_at_unix
`, storage.namespace, key, value, storage.backend.now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("session_store.set.pgx: %w", err)
	}
	return nil
}

func (storage *storage) Delete(ctx context.Context, key string) error {
	_, err := storage.backend.pool.Exec(ctx, `
DELETE FROM session_entries
WHERE namespace = $1 AND entry_key = $2
`, storage.namespace, key)
	if err != nil {
		return fmt.Errorf("session_store.delete.pgx: %w", err)
	}
	return nil
}
