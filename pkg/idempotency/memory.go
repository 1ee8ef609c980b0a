package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stayware/stayflow/pkg/models"
)

// MemoryStore keeps idempotency records in process memory. Suitable for
// tests and single-instance development only; it cannot coordinate across
// server instances.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.IdempotencyRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.IdempotencyRecord)}
}

func (s *MemoryStore) Check(_ context.Context, key, workflowName, actorID, workspaceID string, ttl time.Duration) (CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	existing, ok := s.records[key]
	if ok && !existing.Expired(now) {
		return CheckResult{Duplicate: true, Cached: existing.Result}, nil
	}

	s.records[key] = &models.IdempotencyRecord{
		Key:          key,
		WorkflowName: workflowName,
		ActorID:      actorID,
		WorkspaceID:  workspaceID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	return CheckResult{}, nil
}

func (s *MemoryStore) Store(_ context.Context, key, workflowName string, result json.RawMessage, actorID, workspaceID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	record, ok := s.records[key]
	if !ok {
		record = &models.IdempotencyRecord{
			Key:          key,
			WorkflowName: workflowName,
			ActorID:      actorID,
			WorkspaceID:  workspaceID,
			CreatedAt:    now,
			ExpiresAt:    now.Add(ttl),
		}
		s.records[key] = record
	}

	record.Result = result

	return nil
}
