package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayware/stayflow/pkg/errs"
	"github.com/stayware/stayflow/pkg/models"
)

func TestWrapOperation_Success(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture()

	opts := OperationOptions{
		Op:          "payments.Record",
		EntityType:  models.EntityPayment,
		EntityID:    "p-1",
		Action:      models.ActionCreate,
		ActorID:     "actor-1",
		ActorRole:   models.RoleStaff,
		WorkspaceID: "ws-1",
		After:       map[string]any{"amount": 1200},
		Notifications: []*models.NotificationPayload{{
			Type:          models.NotifyPaymentReceived,
			WorkspaceID:   "ws-1",
			RecipientID:   "t-1",
			RecipientRole: models.RoleTenant,
			Channels:      []models.NotificationChannel{models.ChannelInApp},
		}},
	}

	result, err := WrapOperation(context.Background(), fixture.engine, opts, func(_ context.Context) (string, error) {
		return "p-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "p-1", result)

	stored := fixture.recorder.All()
	require.Len(t, stored, 1)
	assert.Equal(t, models.EntityPayment, stored[0].EntityType)
	assert.Equal(t, models.ActionCreate, stored[0].Action)
	assert.Equal(t, []string{"amount"}, stored[0].FieldsChanged)

	assert.Len(t, fixture.sender.Sent(), 1)
}

func TestWrapOperation_OperationErrorPassesThrough(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture()

	opErr := errors.New("insert failed")

	_, err := WrapOperation(context.Background(), fixture.engine, OperationOptions{
		EntityType:  models.EntityPayment,
		EntityID:    "p-1",
		Action:      models.ActionCreate,
		ActorID:     "actor-1",
		ActorRole:   models.RoleStaff,
		WorkspaceID: "ws-1",
	}, func(_ context.Context) (string, error) {
		return "", opErr
	})
	require.ErrorIs(t, err, opErr)

	// A failed mutation leaves no trace.
	assert.Empty(t, fixture.recorder.All())
	assert.Empty(t, fixture.sender.Sent())
}

func TestWrapOperation_UnknownEntityType(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture()

	called := false

	_, err := WrapOperation(context.Background(), fixture.engine, OperationOptions{
		EntityType: models.EntityType("spaceship"),
	}, func(_ context.Context) (string, error) {
		called = true

		return "", nil
	})
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidation, errs.CodeOf(err))
	assert.False(t, called, "the operation must not run with an invalid entity type")
}

func TestWrapOperation_SkipAudit(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture()

	_, err := WrapOperation(context.Background(), fixture.engine, OperationOptions{
		EntityType:  models.EntityComplaint,
		EntityID:    "c-1",
		Action:      models.ActionStatusChange,
		ActorID:     "actor-1",
		ActorRole:   models.RoleStaff,
		WorkspaceID: "ws-1",
		SkipAudit:   true,
	}, func(_ context.Context) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)
	assert.Empty(t, fixture.recorder.All())
}
