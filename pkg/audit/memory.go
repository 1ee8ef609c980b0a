package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayware/stayflow/pkg/models"
)

// MemoryRecorder keeps audit events in memory. It is used by tests and
// local development; the event semantics (append-only, newest-first
// queries) match the Postgres recorder.
type MemoryRecorder struct {
	mu     sync.RWMutex
	events []*models.AuditEvent
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Log(ctx context.Context, event *models.AuditEvent) (string, error) {
	ids, err := r.LogBatch(ctx, []*models.AuditEvent{event})
	if err != nil {
		return "", err
	}

	return ids[0], nil
}

func (r *MemoryRecorder) LogBatch(_ context.Context, events []*models.AuditEvent) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(events))

	for _, event := range events {
		stored := *event
		if stored.ID == "" {
			stored.ID = uuid.New().String()
		}

		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now().UTC()
		}

		r.events = append(r.events, &stored)
		ids = append(ids, stored.ID)
	}

	return ids, nil
}

func (r *MemoryRecorder) Query(_ context.Context, q Query) ([]*models.AuditEvent, error) {
	if err := q.normalize(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.AuditEvent, 0)

	// Newest first.
	for i := len(r.events) - 1; i >= 0; i-- {
		event := r.events[i]
		if matches(event, q) {
			matched = append(matched, event)
		}
	}

	if q.Offset >= len(matched) {
		return []*models.AuditEvent{}, nil
	}

	matched = matched[q.Offset:]
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	return matched, nil
}

func (r *MemoryRecorder) EntityHistory(ctx context.Context, workspaceID string, entityType models.EntityType, entityID string, limit, offset int) ([]*models.AuditEvent, error) {
	return r.Query(ctx, Query{
		WorkspaceID: workspaceID,
		EntityType:  &entityType,
		EntityID:    entityID,
		Limit:       limit,
		Offset:      offset,
	})
}

// All returns every stored event in append order. Test helper.
func (r *MemoryRecorder) All() []*models.AuditEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.AuditEvent, len(r.events))
	copy(out, r.events)

	return out
}

func matches(event *models.AuditEvent, q Query) bool {
	if event.WorkspaceID != q.WorkspaceID {
		return false
	}

	if q.EntityType != nil && event.EntityType != *q.EntityType {
		return false
	}

	if q.EntityID != "" && event.EntityID != q.EntityID {
		return false
	}

	if q.Action != nil && event.Action != *q.Action {
		return false
	}

	if q.ActorID != "" && event.ActorID != q.ActorID {
		return false
	}

	if q.From != nil && event.CreatedAt.Before(*q.From) {
		return false
	}

	if q.To != nil && event.CreatedAt.After(*q.To) {
		return false
	}

	return true
}
