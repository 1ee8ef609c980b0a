package models

import "time"

// AuditAction is the kind of change an audit event records.
type AuditAction string

const (
	ActionCreate       AuditAction = "create"
	ActionUpdate       AuditAction = "update"
	ActionDelete       AuditAction = "delete"
	ActionStatusChange AuditAction = "status_change"
	ActionApprove      AuditAction = "approve"
	ActionReject       AuditAction = "reject"
	ActionAssign       AuditAction = "assign"
	ActionComplete     AuditAction = "complete"
	ActionCancel       AuditAction = "cancel"
	ActionView         AuditAction = "view"
	ActionExport       AuditAction = "export"
	ActionBulkUpdate   AuditAction = "bulk_update"
)

func (a AuditAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionStatusChange,
		ActionApprove, ActionReject, ActionAssign, ActionComplete,
		ActionCancel, ActionView, ActionExport, ActionBulkUpdate:
		return true
	}

	return false
}

// AuditEvent is one immutable record of what changed, by whom, and in which
// workspace. Events are append-only; there is no update or delete path.
type AuditEvent struct {
	ID            string         `json:"id"`
	WorkspaceID   string         `json:"workspace_id"   validate:"required"`
	EntityType    EntityType     `json:"entity_type"    validate:"required"`
	EntityID      string         `json:"entity_id"      validate:"required"`
	Action        AuditAction    `json:"action"         validate:"required"`
	ActorID       string         `json:"actor_id"       validate:"required"`
	ActorRole     ActorRole      `json:"actor_role"     validate:"required"`
	Before        map[string]any `json:"before,omitempty"`
	After         map[string]any `json:"after,omitempty"`
	FieldsChanged []string       `json:"fields_changed,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	IPAddress     string         `json:"ip_address,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
