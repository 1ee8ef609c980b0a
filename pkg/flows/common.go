package flows

import (
	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/models"
)

func newCreateEvent(wctx *models.WorkflowContext, entityType models.EntityType, entityID string, after map[string]any) *models.AuditEvent {
	return audit.NewEvent(
		entityType,
		entityID,
		models.ActionCreate,
		wctx.ActorID,
		wctx.ActorRole,
		wctx.WorkspaceID,
		nil,
		after,
	)
}

func newStatusChangeEvent(wctx *models.WorkflowContext, entityType models.EntityType, entityID, fromStatus, toStatus string) *models.AuditEvent {
	return audit.NewEvent(
		entityType,
		entityID,
		models.ActionStatusChange,
		wctx.ActorID,
		wctx.ActorRole,
		wctx.WorkspaceID,
		map[string]any{"status": fromStatus},
		map[string]any{"status": toStatus},
	)
}
