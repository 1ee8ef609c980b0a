package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stayware/stayflow/pkg/models"
)

// MockApplier is a mock implementation of the cascade.Applier interface.
type MockApplier struct {
	mock.Mock
}

func (m *MockApplier) Apply(ctx context.Context, effect models.CascadeEffect) error {
	args := m.Called(ctx, effect)

	return args.Error(0)
}
