// Package idempotency deduplicates repeated invocations of the same logical
// operation. The protocol is deliberately two-phase: Check atomically claims
// a key before the workflow runs, Store caches the result afterwards. A test
// double can therefore simulate backing-store unavailability, and the engine
// treats any store error as "no idempotency guarantee available" rather than
// a workflow failure.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DefaultTTL bounds how long a retried request with the same key is
// deduplicated.
const DefaultTTL = 5 * time.Minute

// ErrResultPending indicates the key is claimed by a concurrent invocation
// whose result has not been stored yet.
var ErrResultPending = errors.New("idempotency result not yet available")

// CheckResult is the outcome of an atomic key claim.
type CheckResult struct {
	// Duplicate is true when another invocation already claimed the key
	// within the TTL window.
	Duplicate bool

	// Cached holds the prior invocation's serialized result. It is nil when
	// Duplicate is false, and also when the prior invocation is still
	// running (see ErrResultPending on the engine side).
	Cached json.RawMessage
}

// Store is the two-phase idempotency protocol. Both operations must be
// atomic with respect to concurrent callers using the same key; that
// atomicity is what prevents two callers from both executing a workflow.
type Store interface {
	// Check atomically claims key for the given workflow and actor. When the
	// key was already claimed inside the TTL window it returns Duplicate
	// along with the cached result, if any.
	Check(ctx context.Context, key, workflowName, actorID, workspaceID string, ttl time.Duration) (CheckResult, error)

	// Store caches the serialized result under key for the TTL window.
	Store(ctx context.Context, key, workflowName string, result json.RawMessage, actorID, workspaceID string, ttl time.Duration) error
}
