// Package store provides the shared PostgreSQL bootstrap for the durable
// artifacts this system owns: the audit trail and idempotency records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
)

// Open connects to PostgreSQL, verifies the connection and runs pending
// migrations.
func Open(ctx context.Context, logger *slog.Logger, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	manager := NewMigrationManager(logger, db, migrations())
	if err := manager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
