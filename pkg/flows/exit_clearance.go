package flows

import (
	"context"
	"fmt"

	"github.com/stayware/stayflow/pkg/errs"
	"github.com/stayware/stayflow/pkg/models"
	"github.com/stayware/stayflow/pkg/workflow"
)

type ExitClearanceInput struct {
	WorkspaceID string `json:"workspace_id" validate:"required"`
	TenantID    string `json:"tenant_id"    validate:"required"`
	RoomID      string `json:"room_id"      validate:"required"`
	Reason      string `json:"reason"`
}

type ExitClearanceOutput struct {
	ClearanceID  string  `json:"clearance_id"`
	RefundAmount float64 `json:"refund_amount"`
}

// ExitDesk is the persistence boundary for exit clearance.
type ExitDesk interface {
	OutstandingDues(ctx context.Context, workspaceID, tenantID string) (float64, error)
	CreateClearance(ctx context.Context, workspaceID, tenantID, reason string) (string, error)
	DeleteClearance(ctx context.Context, clearanceID string) error
	CloseTenancy(ctx context.Context, tenantID string) error
	ReopenTenancy(ctx context.Context, tenantID string) error
	ReleaseDeposit(ctx context.Context, tenantID string) (float64, error)
	RecordFinalMeterReading(ctx context.Context, workspaceID, roomID string) (float64, error)
}

const (
	stepCheckDues          = "check-dues"
	stepCreateClearanceRow = "create-clearance-row"
	stepCloseTenancy       = "close-tenancy"
	stepReleaseDeposit     = "release-deposit"
	stepFinalMeterReading  = "record-final-meter-reading"
)

// ProcessExitClearance builds the move-out workflow. The deposit release
// moves real money and cannot be compensated; that step acknowledges its
// missing rollback explicitly, so a failure after it leaves a documented
// partial effect.
func ProcessExitClearance(desk ExitDesk) *workflow.Definition[ExitClearanceInput, ExitClearanceOutput] {
	return &workflow.Definition[ExitClearanceInput, ExitClearanceOutput]{
		Name: "process-exit-clearance",
		Steps: []workflow.Step[ExitClearanceInput]{
			{
				Name: stepCheckDues,
				// Read-only step, nothing to compensate.
				AcknowledgeNoRollback: true,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input ExitClearanceInput, _ workflow.Results) (any, error) {
					dues, err := desk.OutstandingDues(ctx, input.WorkspaceID, input.TenantID)
					if err != nil {
						return nil, err
					}

					if dues > 0 {
						return nil, errs.E("flows.ProcessExitClearance", errs.CodeHasPendingDues,
							fmt.Sprintf("tenant %s has pending dues of %.2f", input.TenantID, dues))
					}

					return dues, nil
				},
			},
			{
				Name: stepCreateClearanceRow,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input ExitClearanceInput, _ workflow.Results) (any, error) {
					return desk.CreateClearance(ctx, input.WorkspaceID, input.TenantID, input.Reason)
				},
				Rollback: func(ctx context.Context, _ ExitClearanceInput, results workflow.Results) error {
					clearanceID, err := workflow.ResultAs[string](results, stepCreateClearanceRow)
					if err != nil {
						return err
					}

					return desk.DeleteClearance(ctx, clearanceID)
				},
			},
			{
				Name: stepCloseTenancy,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input ExitClearanceInput, _ workflow.Results) (any, error) {
					return nil, desk.CloseTenancy(ctx, input.TenantID)
				},
				Rollback: func(ctx context.Context, input ExitClearanceInput, _ workflow.Results) error {
					return desk.ReopenTenancy(ctx, input.TenantID)
				},
			},
			{
				Name: stepReleaseDeposit,
				// Money movement through the payment provider is
				// irreversible from here.
				AcknowledgeNoRollback: true,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input ExitClearanceInput, _ workflow.Results) (any, error) {
					return desk.ReleaseDeposit(ctx, input.TenantID)
				},
			},
			{
				Name:     stepFinalMeterReading,
				Optional: true,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input ExitClearanceInput, _ workflow.Results) (any, error) {
					return desk.RecordFinalMeterReading(ctx, input.WorkspaceID, input.RoomID)
				},
			},
		},
		Cascades: func(input ExitClearanceInput, _ workflow.Results) []models.CascadeEffect {
			return []models.CascadeEffect{
				{
					EntityType:  models.EntityRoom,
					EntityID:    input.RoomID,
					Action:      models.CascadeStatusChange,
					WorkspaceID: input.WorkspaceID,
					Data:        map[string]any{"status": "vacant"},
				},
			}
		},
		AuditEvents: func(wctx *models.WorkflowContext, input ExitClearanceInput, results workflow.Results) []*models.AuditEvent {
			clearanceID, _ := workflow.ResultAs[string](results, stepCreateClearanceRow)

			return []*models.AuditEvent{
				newCreateEvent(wctx, models.EntityExitClearance, clearanceID, map[string]any{
					"tenant_id": input.TenantID,
					"room_id":   input.RoomID,
					"reason":    input.Reason,
				}),
				newStatusChangeEvent(wctx, models.EntityTenant, input.TenantID, "active", "exited"),
			}
		},
		Notifications: func(input ExitClearanceInput, results workflow.Results) []*models.NotificationPayload {
			refund, _ := workflow.ResultAs[float64](results, stepReleaseDeposit)

			return []*models.NotificationPayload{
				{
					Type:          models.NotifyExitClearanceComplete,
					WorkspaceID:   input.WorkspaceID,
					RecipientID:   input.TenantID,
					RecipientRole: models.RoleTenant,
					Channels:      []models.NotificationChannel{models.ChannelEmail, models.ChannelWhatsApp},
					Priority:      models.PriorityNormal,
					Data: map[string]any{
						"refund_amount": refund,
						"room_id":       input.RoomID,
					},
				},
			}
		},
		Output: func(_ ExitClearanceInput, results workflow.Results) (ExitClearanceOutput, error) {
			clearanceID, err := workflow.ResultAs[string](results, stepCreateClearanceRow)
			if err != nil {
				return ExitClearanceOutput{}, err
			}

			refund, err := workflow.ResultAs[float64](results, stepReleaseDeposit)
			if err != nil {
				return ExitClearanceOutput{}, err
			}

			return ExitClearanceOutput{ClearanceID: clearanceID, RefundAmount: refund}, nil
		},
	}
}
