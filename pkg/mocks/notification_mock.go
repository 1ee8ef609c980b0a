package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stayware/stayflow/pkg/models"
)

// MockDispatcher is a mock implementation of the notification.Dispatcher
// interface.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, payload *models.NotificationPayload) (string, error) {
	args := m.Called(ctx, payload)

	return args.String(0), args.Error(1)
}

func (m *MockDispatcher) SendBatch(ctx context.Context, payloads []*models.NotificationPayload) ([]string, error) {
	args := m.Called(ctx, payloads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}
