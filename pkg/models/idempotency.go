package models

import (
	"encoding/json"
	"time"
)

// IdempotencyRecord maps a caller-supplied key to the cached result of a
// prior workflow run. Within the TTL window two invocations with the same
// key must yield the same externally observed result without re-executing
// any step.
type IdempotencyRecord struct {
	Key          string          `json:"key"`
	WorkflowName string          `json:"workflow_name"`
	ActorID      string          `json:"actor_id"`
	WorkspaceID  string          `json:"workspace_id"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// Expired reports whether the record's TTL window has passed at now.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
