package sessionpg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the session table if it does not exist. The layout
// matches the table the GORM backend migrates, so both can share a database.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS session_entries (
    namespace TEXT NOT NULL,
    entry_key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at_unix BIGINT NOT NULL,
    PRIMARY KEY (namespace, entry_key)
);
`)
	return err
}
