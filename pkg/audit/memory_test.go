package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/models"
)

func seedRecorder(t *testing.T) *audit.MemoryRecorder {
	t.Helper()

	recorder := audit.NewMemoryRecorder()

	events := []*models.AuditEvent{
		audit.NewEvent(models.EntityTenant, "t-1", models.ActionCreate, "owner-1", models.RoleOwner, "ws-1", nil, map[string]any{"name": "Asha"}),
		audit.NewEvent(models.EntityTenant, "t-1", models.ActionUpdate, "staff-1", models.RoleStaff, "ws-1", map[string]any{"rent": 8000}, map[string]any{"rent": 8500}),
		audit.NewEvent(models.EntityBill, "b-1", models.ActionCreate, "staff-1", models.RoleStaff, "ws-1", nil, map[string]any{"total": 8500}),
		audit.NewEvent(models.EntityTenant, "t-9", models.ActionCreate, "owner-2", models.RoleOwner, "ws-2", nil, nil),
	}

	_, err := recorder.LogBatch(context.Background(), events)
	require.NoError(t, err)

	return recorder
}

func TestMemoryRecorder_Log(t *testing.T) {
	t.Parallel()

	recorder := audit.NewMemoryRecorder()

	event := audit.NewEvent(models.EntityRoom, "room-7", models.ActionStatusChange,
		"system", models.RoleSystem, "ws-1",
		map[string]any{"status": "occupied"}, map[string]any{"status": "vacant"})

	id, err := recorder.Log(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stored := recorder.All()
	require.Len(t, stored, 1)
	assert.Equal(t, id, stored[0].ID)
	assert.Equal(t, []string{"status"}, stored[0].FieldsChanged)
	assert.False(t, stored[0].CreatedAt.IsZero())
}

func TestMemoryRecorder_QueryRequiresWorkspace(t *testing.T) {
	t.Parallel()

	recorder := seedRecorder(t)

	_, err := recorder.Query(context.Background(), audit.Query{})
	assert.ErrorIs(t, err, audit.ErrWorkspaceRequired)
}

func TestMemoryRecorder_QueryIsWorkspaceScoped(t *testing.T) {
	t.Parallel()

	recorder := seedRecorder(t)

	events, err := recorder.Query(context.Background(), audit.Query{WorkspaceID: "ws-1"})
	require.NoError(t, err)
	require.Len(t, events, 3)

	for _, event := range events {
		assert.Equal(t, "ws-1", event.WorkspaceID)
	}
}

func TestMemoryRecorder_QueryFilters(t *testing.T) {
	t.Parallel()

	recorder := seedRecorder(t)
	ctx := context.Background()

	entityType := models.EntityTenant
	events, err := recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", EntityType: &entityType})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	action := models.ActionUpdate
	events, err = recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", Action: &action})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"rent"}, events[0].FieldsChanged)

	events, err = recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", ActorID: "owner-1"})
	require.NoError(t, err)
	assert.Len(t, events, 1)

	future := time.Now().UTC().Add(time.Hour)
	events, err = recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", From: &future})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemoryRecorder_QueryPagination(t *testing.T) {
	t.Parallel()

	recorder := seedRecorder(t)
	ctx := context.Background()

	page, err := recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.NotContains(t, []string{page[0].ID, page[1].ID}, rest[0].ID)

	beyond, err := recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", Offset: 50})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestMemoryRecorder_QueryRejectsNegativeOffset(t *testing.T) {
	t.Parallel()

	recorder := seedRecorder(t)
	ctx := context.Background()

	_, err := recorder.Query(ctx, audit.Query{WorkspaceID: "ws-1", Offset: -1})
	assert.ErrorIs(t, err, audit.ErrNegativeOffset)

	_, err = recorder.EntityHistory(ctx, "ws-1", models.EntityTenant, "t-1", 0, -1)
	assert.ErrorIs(t, err, audit.ErrNegativeOffset)
}

func TestMemoryRecorder_EntityHistory(t *testing.T) {
	t.Parallel()

	recorder := seedRecorder(t)

	events, err := recorder.EntityHistory(context.Background(), "ws-1", models.EntityTenant, "t-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, models.ActionUpdate, events[0].Action)
	assert.Equal(t, models.ActionCreate, events[1].Action)
}
