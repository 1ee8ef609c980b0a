package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stayware/stayflow/pkg/idempotency"
)

// MockIdempotencyStore is a mock implementation of the idempotency.Store
// interface.
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Check(ctx context.Context, key, workflowName, actorID, workspaceID string, ttl time.Duration) (idempotency.CheckResult, error) {
	args := m.Called(ctx, key, workflowName, actorID, workspaceID, ttl)

	return args.Get(0).(idempotency.CheckResult), args.Error(1)
}

func (m *MockIdempotencyStore) Store(ctx context.Context, key, workflowName string, result json.RawMessage, actorID, workspaceID string, ttl time.Duration) error {
	args := m.Called(ctx, key, workflowName, result, actorID, workspaceID, ttl)

	return args.Error(0)
}
