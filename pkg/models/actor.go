package models

// ActorRole identifies who is driving a workflow or audited operation.
type ActorRole string

const (
	RoleOwner  ActorRole = "owner"  // owning principal of the workspace
	RoleStaff  ActorRole = "staff"  // delegated staff member
	RoleTenant ActorRole = "tenant" // end customer
	RoleSystem ActorRole = "system" // scheduled or internal automation
)

func (r ActorRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleStaff, RoleTenant, RoleSystem:
		return true
	}

	return false
}
