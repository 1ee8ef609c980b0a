// Package audit provides the append-only audit trail: recording structured
// change events for entities and querying them back for compliance and
// entity-history views.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stayware/stayflow/pkg/models"
)

var (
	// ErrWorkspaceRequired is returned by Query when no workspace scope is given.
	ErrWorkspaceRequired = errors.New("workspace_id is required")

	// ErrNegativeOffset is returned by Query when the offset is negative.
	ErrNegativeOffset = errors.New("offset must not be negative")

	// ErrEventNotFound indicates no audit event matched the given identifier.
	ErrEventNotFound = errors.New("audit event not found")
)

// Recorder appends and queries audit events. Events are immutable once
// written; implementations must not expose an update or delete path.
type Recorder interface {
	// Log appends one event and returns its assigned id.
	Log(ctx context.Context, event *models.AuditEvent) (string, error)

	// LogBatch appends events atomically where the backing store allows it
	// and returns the assigned ids in input order.
	LogBatch(ctx context.Context, events []*models.AuditEvent) ([]string, error)

	// Query returns events matching the filter, newest first.
	Query(ctx context.Context, q Query) ([]*models.AuditEvent, error)

	// EntityHistory returns the events for one entity, newest first.
	EntityHistory(ctx context.Context, workspaceID string, entityType models.EntityType, entityID string, limit, offset int) ([]*models.AuditEvent, error)
}

// Query filters audit events. WorkspaceID is mandatory; everything else
// narrows the result.
type Query struct {
	WorkspaceID string              `json:"workspace_id" validate:"required"`
	EntityType  *models.EntityType  `json:"entity_type,omitempty"`
	EntityID    string              `json:"entity_id,omitempty"`
	Action      *models.AuditAction `json:"action,omitempty"`
	ActorID     string              `json:"actor_id,omitempty"`
	From        *time.Time          `json:"from_date,omitempty"`
	To          *time.Time          `json:"to_date,omitempty"`
	Limit       int                 `json:"limit,omitempty"  validate:"min=0,max=500"`
	Offset      int                 `json:"offset,omitempty" validate:"min=0"`
}

const defaultQueryLimit = 50

func (q *Query) normalize() error {
	if q.WorkspaceID == "" {
		return ErrWorkspaceRequired
	}

	if q.Offset < 0 {
		return ErrNegativeOffset
	}

	if q.Limit <= 0 {
		q.Limit = defaultQueryLimit
	}

	return nil
}

// NewEvent builds an audit event from before/after snapshots, filling
// FieldsChanged by deep-comparing matching keys. Either snapshot may be nil
// for pure create or delete events.
func NewEvent(
	entityType models.EntityType,
	entityID string,
	action models.AuditAction,
	actorID string,
	actorRole models.ActorRole,
	workspaceID string,
	before, after map[string]any,
) *models.AuditEvent {
	return &models.AuditEvent{
		ID:            uuid.New().String(),
		WorkspaceID:   workspaceID,
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        action,
		ActorID:       actorID,
		ActorRole:     actorRole,
		Before:        before,
		After:         after,
		FieldsChanged: DiffObjects(before, after),
		CreatedAt:     time.Now().UTC(),
	}
}
