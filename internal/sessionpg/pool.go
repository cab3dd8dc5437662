package sessionpg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName = "storefront-session"
	maxSessionConns = 8
)

// ParsePoolConfig reads databaseURL and applies the session pool limits.
// Explicit pool_* parameters in the URL are overridden.
func ParsePoolConfig(databaseURL string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("session_store.pgx.parse_url: %w", err)
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolConfig.MinConns = 1
	poolConfig.MaxConns = maxSessionConns
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute
	return poolConfig, nil
}

// BuildPool opens the session pool and pings it once.
func BuildPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := ParsePoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("session_store.pgx.open: %w", err)
	}
	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("session_store.pgx.ping: %w", pingErr)
	}
	return pool, nil
}
