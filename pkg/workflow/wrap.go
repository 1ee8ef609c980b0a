package workflow

import (
	"context"
	"fmt"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/errs"
	"github.com/stayware/stayflow/pkg/models"
)

// OperationOptions describe the single audited mutation performed by
// WrapOperation.
type OperationOptions struct {
	Op          string // operation name for logs and error context
	EntityType  models.EntityType
	EntityID    string
	Action      models.AuditAction
	ActorID     string
	ActorRole   models.ActorRole
	WorkspaceID string

	// Optional before/after snapshots; fields_changed is derived from them.
	Before map[string]any
	After  map[string]any

	Metadata      map[string]any
	Notifications []*models.NotificationPayload
	SkipAudit     bool
}

// WrapOperation runs a single operation that doesn't need the full step
// machinery but still wants one audit event and optional notifications.
// The operation's own error is returned untouched; audit and notification
// failures after a successful mutation are logged, never surfaced.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func WrapOperation[T any](ctx context.Context, engine *Engine, opts OperationOptions, operation func(context.Context) (T, error)) (T, error) {
	var zero T

	op := opts.Op
	if op == "" {
		op = "workflow.WrapOperation"
	}

	if opts.EntityType != "" && !opts.EntityType.IsValid() {
		return zero, errs.E(op, errs.CodeValidation, fmt.Sprintf("unknown entity type %q", opts.EntityType))
	}

	result, err := operation(ctx)
	if err != nil {
		return zero, err
	}

	logger := engine.logger.With("op", op, "entity_type", opts.EntityType, "entity_id", opts.EntityID)

	if engine.audit != nil && !opts.SkipAudit && opts.EntityType != "" {
		event := audit.NewEvent(
			opts.EntityType,
			opts.EntityID,
			opts.Action,
			opts.ActorID,
			opts.ActorRole,
			opts.WorkspaceID,
			opts.Before,
			opts.After,
		)
		event.Metadata = opts.Metadata

		if _, logErr := engine.audit.Log(ctx, event); logErr != nil {
			logger.ErrorContext(ctx, "audit write failed", "error", logErr)
		}
	}

	if engine.notifications != nil && len(opts.Notifications) > 0 {
		if _, sendErr := engine.notifications.SendBatch(ctx, opts.Notifications); sendErr != nil {
			logger.ErrorContext(ctx, "notification dispatch failed", "error", sendErr)
		}
	}

	return result, nil
}
