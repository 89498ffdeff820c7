package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations creates the journal schema. Idempotent; runs at startup.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS glance_sessions (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			handle      UUID NOT NULL UNIQUE,
			title       TEXT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			ended_at    TIMESTAMPTZ,
			first_bpm   INT NOT NULL,
			last_bpm    INT,
			peak_bpm    INT
		);
		CREATE INDEX IF NOT EXISTS idx_glance_sessions_started_at
			ON glance_sessions (started_at DESC);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
