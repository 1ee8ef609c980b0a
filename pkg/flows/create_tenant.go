// Package flows declares the workflow definitions for the core business
// operations: tenant onboarding, bill generation and exit clearance. Each
// flow talks to its backing collections through a narrow interface so the
// definitions stay testable without a database.
package flows

import (
	"context"

	"github.com/stayware/stayflow/pkg/models"
	"github.com/stayware/stayflow/pkg/workflow"
)

// CreateTenantInput is the caller-constructed input for tenant onboarding.
type CreateTenantInput struct {
	WorkspaceID    string  `json:"workspace_id"    validate:"required"`
	PropertyID     string  `json:"property_id"     validate:"required"`
	RoomID         string  `json:"room_id"         validate:"required"`
	FullName       string  `json:"full_name"       validate:"required,min=2"`
	Phone          string  `json:"phone"           validate:"required"`
	Email          string  `json:"email"           validate:"omitempty,email"`
	InvitationCode string  `json:"invitation_code" validate:"required"`
	MonthlyRent    float64 `json:"monthly_rent"    validate:"gte=0"`
}

type CreateTenantOutput struct {
	TenantID string `json:"tenant_id"`
	PersonID string `json:"person_id"`
}

// TenantDirectory is the persistence boundary for tenant onboarding.
type TenantDirectory interface {
	CreatePersonLink(ctx context.Context, workspaceID, fullName, phone, email string) (string, error)
	DeletePersonLink(ctx context.Context, personID string) error
	CreateTenant(ctx context.Context, input CreateTenantInput, personID string) (string, error)
	DeleteTenant(ctx context.Context, tenantID string) error
	LinkInvitation(ctx context.Context, invitationCode, tenantID string) error
	UnlinkInvitation(ctx context.Context, invitationCode string) error
}

const (
	stepCreatePersonLink = "create-person-link"
	stepCreateTenantRow  = "create-tenant-row"
	stepLinkInvitation   = "link-invitation"
)

// CreateTenant builds the tenant onboarding workflow: person link, tenant
// row, invitation link, then room occupancy cascade and a welcome
// notification.
func CreateTenant(directory TenantDirectory) *workflow.Definition[CreateTenantInput, CreateTenantOutput] {
	return &workflow.Definition[CreateTenantInput, CreateTenantOutput]{
		Name: "create-tenant",
		Steps: []workflow.Step[CreateTenantInput]{
			{
				Name: stepCreatePersonLink,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input CreateTenantInput, _ workflow.Results) (any, error) {
					return directory.CreatePersonLink(ctx, input.WorkspaceID, input.FullName, input.Phone, input.Email)
				},
				Rollback: func(ctx context.Context, _ CreateTenantInput, results workflow.Results) error {
					personID, err := workflow.ResultAs[string](results, stepCreatePersonLink)
					if err != nil {
						return err
					}

					return directory.DeletePersonLink(ctx, personID)
				},
			},
			{
				Name: stepCreateTenantRow,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input CreateTenantInput, results workflow.Results) (any, error) {
					personID, err := workflow.ResultAs[string](results, stepCreatePersonLink)
					if err != nil {
						return nil, err
					}

					return directory.CreateTenant(ctx, input, personID)
				},
				Rollback: func(ctx context.Context, _ CreateTenantInput, results workflow.Results) error {
					tenantID, err := workflow.ResultAs[string](results, stepCreateTenantRow)
					if err != nil {
						return err
					}

					return directory.DeleteTenant(ctx, tenantID)
				},
			},
			{
				Name: stepLinkInvitation,
				Run: func(ctx context.Context, _ *models.WorkflowContext, input CreateTenantInput, results workflow.Results) (any, error) {
					tenantID, err := workflow.ResultAs[string](results, stepCreateTenantRow)
					if err != nil {
						return nil, err
					}

					return nil, directory.LinkInvitation(ctx, input.InvitationCode, tenantID)
				},
				Rollback: func(ctx context.Context, input CreateTenantInput, _ workflow.Results) error {
					return directory.UnlinkInvitation(ctx, input.InvitationCode)
				},
			},
		},
		Cascades: func(input CreateTenantInput, _ workflow.Results) []models.CascadeEffect {
			return []models.CascadeEffect{
				{
					EntityType:  models.EntityRoom,
					EntityID:    input.RoomID,
					Action:      models.CascadeStatusChange,
					WorkspaceID: input.WorkspaceID,
					Data:        map[string]any{"status": "occupied"},
				},
			}
		},
		AuditEvents: func(wctx *models.WorkflowContext, input CreateTenantInput, results workflow.Results) []*models.AuditEvent {
			tenantID, _ := workflow.ResultAs[string](results, stepCreateTenantRow)

			return []*models.AuditEvent{
				newCreateEvent(wctx, models.EntityTenant, tenantID, map[string]any{
					"full_name":    input.FullName,
					"phone":        input.Phone,
					"property_id":  input.PropertyID,
					"room_id":      input.RoomID,
					"monthly_rent": input.MonthlyRent,
				}),
			}
		},
		Notifications: func(input CreateTenantInput, results workflow.Results) []*models.NotificationPayload {
			tenantID, _ := workflow.ResultAs[string](results, stepCreateTenantRow)

			return []*models.NotificationPayload{
				{
					Type:          models.NotifyTenantCreated,
					WorkspaceID:   input.WorkspaceID,
					RecipientID:   tenantID,
					RecipientRole: models.RoleTenant,
					Channels:      []models.NotificationChannel{models.ChannelWhatsApp, models.ChannelInApp},
					Priority:      models.PriorityNormal,
					Data: map[string]any{
						"full_name":   input.FullName,
						"property_id": input.PropertyID,
						"room_id":     input.RoomID,
					},
				},
			}
		},
		Output: func(_ CreateTenantInput, results workflow.Results) (CreateTenantOutput, error) {
			tenantID, err := workflow.ResultAs[string](results, stepCreateTenantRow)
			if err != nil {
				return CreateTenantOutput{}, err
			}

			personID, err := workflow.ResultAs[string](results, stepCreatePersonLink)
			if err != nil {
				return CreateTenantOutput{}, err
			}

			return CreateTenantOutput{TenantID: tenantID, PersonID: personID}, nil
		},
	}
}
