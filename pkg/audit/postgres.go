package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/stayware/stayflow/pkg/models"
)

// PostgresRecorder persists audit events in the audit_events table.
type PostgresRecorder struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRecorder creates a recorder backed by the given database.
func NewPostgresRecorder(db *sql.DB, logger *slog.Logger) *PostgresRecorder {
	return &PostgresRecorder{
		db:     db,
		logger: logger.With("module", "audit_recorder"),
	}
}

const insertEventSQL = `
	INSERT INTO audit_events (
		id
	  , workspace_id
	  , entity_type
	  , entity_id
	  , action
	  , actor_id
	  , actor_role
	  , before_snapshot
	  , after_snapshot
	  , fields_changed
	  , metadata
	  , ip_address
	  , user_agent
	  , created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

// Log appends one event and returns its assigned id.
func (r *PostgresRecorder) Log(ctx context.Context, event *models.AuditEvent) (string, error) {
	ids, err := r.LogBatch(ctx, []*models.AuditEvent{event})
	if err != nil {
		return "", err
	}

	return ids[0], nil
}

// LogBatch appends events in one transaction and returns their ids in input
// order. Either every event is written or none are.
func (r *PostgresRecorder) LogBatch(ctx context.Context, events []*models.AuditEvent) ([]string, error) {
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin audit transaction: %w", err)
	}

	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			r.logger.ErrorContext(ctx, "failed to rollback audit transaction", "error", rollbackErr)
		}
	}()

	ids := make([]string, 0, len(events))

	for _, event := range events {
		if event.ID == "" {
			event.ID = uuid.New().String()
		}

		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now().UTC()
		}

		beforeJSON, err := marshalNullable(event.Before)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal before snapshot: %w", err)
		}

		afterJSON, err := marshalNullable(event.After)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal after snapshot: %w", err)
		}

		metadataJSON, err := marshalNullable(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}

		_, err = tx.ExecContext(ctx, insertEventSQL,
			event.ID,
			event.WorkspaceID,
			string(event.EntityType),
			event.EntityID,
			string(event.Action),
			event.ActorID,
			string(event.ActorRole),
			beforeJSON,
			afterJSON,
			pq.Array(event.FieldsChanged),
			metadataJSON,
			nullString(event.IPAddress),
			nullString(event.UserAgent),
			event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert audit event %s: %w", event.ID, err)
		}

		ids = append(ids, event.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit audit batch: %w", err)
	}

	return ids, nil
}

// Query returns events matching the filter, newest first.
func (r *PostgresRecorder) Query(ctx context.Context, q Query) ([]*models.AuditEvent, error) {
	if err := q.normalize(); err != nil {
		return nil, err
	}

	query := `
		SELECT
			id
		  , workspace_id
		  , entity_type
		  , entity_id
		  , action
		  , actor_id
		  , actor_role
		  , before_snapshot
		  , after_snapshot
		  , fields_changed
		  , metadata
		  , ip_address
		  , user_agent
		  , created_at
		FROM audit_events
		WHERE workspace_id = $1
	`

	args := []any{q.WorkspaceID}

	if q.EntityType != nil {
		args = append(args, string(*q.EntityType))
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}

	if q.EntityID != "" {
		args = append(args, q.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}

	if q.Action != nil {
		args = append(args, string(*q.Action))
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}

	if q.ActorID != "" {
		args = append(args, q.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}

	if q.From != nil {
		args = append(args, *q.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	if q.To != nil {
		args = append(args, *q.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	args = append(args, q.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	args = append(args, q.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	events := make([]*models.AuditEvent, 0)

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	return events, nil
}

// EntityHistory returns the events for one entity, newest first.
func (r *PostgresRecorder) EntityHistory(ctx context.Context, workspaceID string, entityType models.EntityType, entityID string, limit, offset int) ([]*models.AuditEvent, error) {
	return r.Query(ctx, Query{
		WorkspaceID: workspaceID,
		EntityType:  &entityType,
		EntityID:    entityID,
		Limit:       limit,
		Offset:      offset,
	})
}

func scanEvent(rows *sql.Rows) (*models.AuditEvent, error) {
	var (
		event                           models.AuditEvent
		entityType, action, actorRole   string
		beforeJSON, afterJSON, metaJSON sql.NullString
		ipAddress, userAgent            sql.NullString
		fieldsChanged                   pq.StringArray
	)

	err := rows.Scan(
		&event.ID,
		&event.WorkspaceID,
		&entityType,
		&event.EntityID,
		&action,
		&event.ActorID,
		&actorRole,
		&beforeJSON,
		&afterJSON,
		&fieldsChanged,
		&metaJSON,
		&ipAddress,
		&userAgent,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit event: %w", err)
	}

	event.EntityType = models.EntityType(entityType)
	event.Action = models.AuditAction(action)
	event.ActorRole = models.ActorRole(actorRole)
	event.FieldsChanged = []string(fieldsChanged)
	event.IPAddress = ipAddress.String
	event.UserAgent = userAgent.String

	if err := unmarshalNullable(beforeJSON, &event.Before); err != nil {
		return nil, fmt.Errorf("failed to unmarshal before snapshot: %w", err)
	}

	if err := unmarshalNullable(afterJSON, &event.After); err != nil {
		return nil, fmt.Errorf("failed to unmarshal after snapshot: %w", err)
	}

	if err := unmarshalNullable(metaJSON, &event.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &event, nil
}

func marshalNullable(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

func unmarshalNullable(src sql.NullString, dst *map[string]any) error {
	if !src.Valid || src.String == "" {
		return nil
	}

	return json.Unmarshal([]byte(src.String), dst)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}

	return s
}
