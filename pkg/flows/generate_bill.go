package flows

import (
	"context"

	"github.com/stayware/stayflow/pkg/models"
	"github.com/stayware/stayflow/pkg/workflow"
)

type GenerateBillInput struct {
	WorkspaceID string `json:"workspace_id" validate:"required"`
	TenantID    string `json:"tenant_id"    validate:"required"`
	Period      string `json:"period"       validate:"required"` // e.g. "2026-08"
}

type GenerateBillOutput struct {
	BillID string  `json:"bill_id"`
	Total  float64 `json:"total"`
}

// Charge is one unbilled line item collected into a bill.
type Charge struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// BillingBook is the persistence boundary for bill generation.
type BillingBook interface {
	PendingCharges(ctx context.Context, workspaceID, tenantID, period string) ([]Charge, error)
	CreateBill(ctx context.Context, workspaceID, tenantID, period string, charges []Charge) (string, error)
	DeleteBill(ctx context.Context, billID string) error
	MarkChargesBilled(ctx context.Context, chargeIDs []string, billID string) error
	UnmarkChargesBilled(ctx context.Context, chargeIDs []string) error
}

const (
	stepCollectCharges    = "collect-charges"
	stepCreateBillRow     = "create-bill-row"
	stepMarkChargesBilled = "mark-charges-billed"
)

// GenerateBill builds the monthly billing workflow. Callers pass an
// idempotency key derived from (tenant, period) so a retried request cannot
// create a second bill for the same month.
func GenerateBill(book BillingBook) *workflow.Definition[GenerateBillInput, GenerateBillOutput] {
	return &workflow.Definition[GenerateBillInput, GenerateBillOutput]{
		Name: "generate-bill",
		Steps: []workflow.Step[GenerateBillInput]{
			{
				Name: stepCollectCharges,
				// Read-only step, nothing to compensate.
				AcknowledgeNoRollback: true,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input GenerateBillInput, _ workflow.Results) (any, error) {
					return book.PendingCharges(ctx, input.WorkspaceID, input.TenantID, input.Period)
				},
			},
			{
				Name: stepCreateBillRow,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input GenerateBillInput, results workflow.Results) (any, error) {
					charges, err := workflow.ResultAs[[]Charge](results, stepCollectCharges)
					if err != nil {
						return nil, err
					}

					return book.CreateBill(ctx, input.WorkspaceID, input.TenantID, input.Period, charges)
				},
				Rollback: func(ctx context.Context, _ GenerateBillInput, results workflow.Results) error {
					billID, err := workflow.ResultAs[string](results, stepCreateBillRow)
					if err != nil {
						return err
					}

					return book.DeleteBill(ctx, billID)
				},
			},
			{
				Name: stepMarkChargesBilled,
				Run: func(ctx context.Context, _ *models.WorkflowContext, _ GenerateBillInput, results workflow.Results) (any, error) {
					charges, err := workflow.ResultAs[[]Charge](results, stepCollectCharges)
					if err != nil {
						return nil, err
					}

					billID, err := workflow.ResultAs[string](results, stepCreateBillRow)
					if err != nil {
						return nil, err
					}

					return nil, book.MarkChargesBilled(ctx, chargeIDs(charges), billID)
				},
				Rollback: func(ctx context.Context, _ GenerateBillInput, results workflow.Results) error {
					charges, err := workflow.ResultAs[[]Charge](results, stepCollectCharges)
					if err != nil {
						return err
					}

					return book.UnmarkChargesBilled(ctx, chargeIDs(charges))
				},
			},
		},
		Cascades: func(input GenerateBillInput, _ workflow.Results) []models.CascadeEffect {
			return []models.CascadeEffect{
				{
					EntityType:  models.EntityTenant,
					EntityID:    input.TenantID,
					Action:      models.CascadeUpdate,
					WorkspaceID: input.WorkspaceID,
					Data:        map[string]any{"last_billed_period": input.Period},
				},
			}
		},
		AuditEvents: func(wctx *models.WorkflowContext, input GenerateBillInput, results workflow.Results) []*models.AuditEvent {
			billID, _ := workflow.ResultAs[string](results, stepCreateBillRow)
			charges, _ := workflow.ResultAs[[]Charge](results, stepCollectCharges)

			return []*models.AuditEvent{
				newCreateEvent(wctx, models.EntityBill, billID, map[string]any{
					"tenant_id": input.TenantID,
					"period":    input.Period,
					"total":     totalOf(charges),
					"charges":   len(charges),
				}),
			}
		},
		Notifications: func(input GenerateBillInput, results workflow.Results) []*models.NotificationPayload {
			billID, _ := workflow.ResultAs[string](results, stepCreateBillRow)
			charges, _ := workflow.ResultAs[[]Charge](results, stepCollectCharges)

			return []*models.NotificationPayload{
				{
					Type:          models.NotifyBillGenerated,
					WorkspaceID:   input.WorkspaceID,
					RecipientID:   input.TenantID,
					RecipientRole: models.RoleTenant,
					Channels:      []models.NotificationChannel{models.ChannelEmail, models.ChannelWhatsApp, models.ChannelInApp},
					Priority:      models.PriorityHigh,
					Data: map[string]any{
						"bill_id": billID,
						"period":  input.Period,
						"total":   totalOf(charges),
					},
				},
			}
		},
		Output: func(_ GenerateBillInput, results workflow.Results) (GenerateBillOutput, error) {
			billID, err := workflow.ResultAs[string](results, stepCreateBillRow)
			if err != nil {
				return GenerateBillOutput{}, err
			}

			charges, err := workflow.ResultAs[[]Charge](results, stepCollectCharges)
			if err != nil {
				return GenerateBillOutput{}, err
			}

			return GenerateBillOutput{BillID: billID, Total: totalOf(charges)}, nil
		},
	}
}

func chargeIDs(charges []Charge) []string {
	ids := make([]string, 0, len(charges))
	for _, charge := range charges {
		ids = append(ids, charge.ID)
	}

	return ids
}

func totalOf(charges []Charge) float64 {
	var total float64
	for _, charge := range charges {
		total += charge.Amount
	}

	return total
}
