// Package mocks provides testify mocks for the engine's collaborator
// interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/models"
)

// MockRecorder is a mock implementation of the audit.Recorder interface.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Log(ctx context.Context, event *models.AuditEvent) (string, error) {
	args := m.Called(ctx, event)

	return args.String(0), args.Error(1)
}

func (m *MockRecorder) LogBatch(ctx context.Context, events []*models.AuditEvent) ([]string, error) {
	args := m.Called(ctx, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecorder) Query(ctx context.Context, q audit.Query) ([]*models.AuditEvent, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.AuditEvent), args.Error(1)
}

func (m *MockRecorder) EntityHistory(ctx context.Context, workspaceID string, entityType models.EntityType, entityID string, limit, offset int) ([]*models.AuditEvent, error) {
	args := m.Called(ctx, workspaceID, entityType, entityID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.AuditEvent), args.Error(1)
}
