package models

// CascadeAction is the mutation a cascade effect performs.
type CascadeAction string

const (
	CascadeUpdate       CascadeAction = "update"
	CascadeStatusChange CascadeAction = "status_change"
	CascadeDelete       CascadeAction = "delete"
)

func (a CascadeAction) IsValid() bool {
	switch a {
	case CascadeUpdate, CascadeStatusChange, CascadeDelete:
		return true
	}

	return false
}

// CascadeEffect is a side-effect mutation applied to an entity other than
// the one the workflow is primarily about, such as freeing a room when a
// tenant exits. Cascades are best-effort enrichment applied after the
// workflow's required steps have already succeeded.
type CascadeEffect struct {
	EntityType  EntityType     `json:"entity_type" validate:"required"`
	EntityID    string         `json:"entity_id"   validate:"required"`
	Action      CascadeAction  `json:"action"      validate:"required"`
	WorkspaceID string         `json:"workspace_id"`
	Data        map[string]any `json:"data,omitempty"`
}
