package idempotency

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// PostgresStore implements the two-phase protocol on the idempotency_keys
// table. Claiming relies on INSERT ... ON CONFLICT DO NOTHING, so two
// concurrent callers racing on the same key see exactly one successful
// claim.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With("module", "idempotency_store"),
	}
}

func (s *PostgresStore) Check(ctx context.Context, key, workflowName, actorID, workspaceID string, ttl time.Duration) (CheckResult, error) {
	now := time.Now().UTC()

	claim := `
		INSERT INTO idempotency_keys (key, workflow_name, actor_id, workspace_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, claim, key, workflowName, actorID, workspaceID, now, now.Add(ttl))
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to claim idempotency key: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to read claim outcome: %w", err)
	}

	if affected == 1 {
		return CheckResult{}, nil
	}

	// Key exists. If its window has expired, take it over; otherwise return
	// the cached result (which may still be absent while the first caller
	// runs).
	var (
		result    sql.NullString
		expiresAt time.Time
	)

	query := `SELECT result, expires_at FROM idempotency_keys WHERE key = $1`

	err = s.db.QueryRowContext(ctx, query, key).Scan(&result, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Deleted between the claim and the read; treat as fresh.
		return CheckResult{}, nil
	}

	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	if now.After(expiresAt) {
		reclaim := `
			UPDATE idempotency_keys
			SET workflow_name = $2, actor_id = $3, workspace_id = $4, result = NULL, created_at = $5, expires_at = $6
			WHERE key = $1 AND expires_at = $7
		`

		res, err := s.db.ExecContext(ctx, reclaim, key, workflowName, actorID, workspaceID, now, now.Add(ttl), expiresAt)
		if err != nil {
			return CheckResult{}, fmt.Errorf("failed to reclaim expired idempotency key: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return CheckResult{}, fmt.Errorf("failed to read reclaim outcome: %w", err)
		}

		if affected == 1 {
			return CheckResult{}, nil
		}

		// Lost the reclaim race to another caller.
		return CheckResult{Duplicate: true}, nil
	}

	checked := CheckResult{Duplicate: true}
	if result.Valid {
		checked.Cached = json.RawMessage(result.String)
	}

	return checked, nil
}

func (s *PostgresStore) Store(ctx context.Context, key, workflowName string, result json.RawMessage, actorID, workspaceID string, ttl time.Duration) error {
	now := time.Now().UTC()

	query := `
		INSERT INTO idempotency_keys (key, workflow_name, actor_id, workspace_id, result, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE SET result = EXCLUDED.result
	`

	_, err := s.db.ExecContext(ctx, query, key, workflowName, actorID, workspaceID, string(result), now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("failed to store idempotency result: %w", err)
	}

	return nil
}
