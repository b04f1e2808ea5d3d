package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connMaxIdleTime bounds how long the pool holds idle connections. Login
// traffic is bursty; idle connections from a burst should not linger.
const connMaxIdleTime = 5 * time.Minute

// DB wraps a pgxpool.Pool holding the user directory and blog store.
type DB struct {
	pool *pgxpool.Pool
}

// New parses the database URL, establishes a connection pool and verifies it
// with a ping before returning.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolCfg.MaxConnIdleTime = connMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping verifies the database connection is alive. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool exposes the underlying pool for the repositories.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
