package models

// EntityType identifies the kind of business entity an audit event or
// cascade effect refers to.
type EntityType string

const (
	EntityTenant        EntityType = "tenant"
	EntityProperty      EntityType = "property"
	EntityRoom          EntityType = "room"
	EntityBill          EntityType = "bill"
	EntityPayment       EntityType = "payment"
	EntityExpense       EntityType = "expense"
	EntityComplaint     EntityType = "complaint"
	EntityNotice        EntityType = "notice"
	EntityVisitor       EntityType = "visitor"
	EntityStaff         EntityType = "staff"
	EntityExitClearance EntityType = "exit_clearance"
	EntityApproval      EntityType = "approval"
	EntityMeterReading  EntityType = "meter_reading"
	EntityCharge        EntityType = "charge"
	EntityRole          EntityType = "role"
	EntityWorkspace     EntityType = "workspace"

	// EntityWorkflow is used for the engine's own audit events, such as the
	// summary written when optional steps fail.
	EntityWorkflow EntityType = "workflow"
)

// Table returns the backing table for the entity type. The switch is
// exhaustive over the declared constants so a new entity type without a
// mapping fails loudly instead of falling through to a silent no-op.
func (e EntityType) Table() (string, bool) {
	switch e {
	case EntityTenant:
		return "tenants", true
	case EntityProperty:
		return "properties", true
	case EntityRoom:
		return "rooms", true
	case EntityBill:
		return "bills", true
	case EntityPayment:
		return "payments", true
	case EntityExpense:
		return "expenses", true
	case EntityComplaint:
		return "complaints", true
	case EntityNotice:
		return "notices", true
	case EntityVisitor:
		return "visitors", true
	case EntityStaff:
		return "staff_members", true
	case EntityExitClearance:
		return "exit_clearances", true
	case EntityApproval:
		return "approvals", true
	case EntityMeterReading:
		return "meter_readings", true
	case EntityCharge:
		return "charges", true
	case EntityRole:
		return "roles", true
	case EntityWorkspace:
		return "workspaces", true
	case EntityWorkflow:
		// Workflow runs are not persisted as rows; only their audit trail is.
		return "", false
	}

	return "", false
}

// IsValid reports whether the entity type is one of the declared constants.
func (e EntityType) IsValid() bool {
	if e == EntityWorkflow {
		return true
	}

	_, ok := e.Table()

	return ok
}

// AllEntityTypes lists every declared entity type, useful for validation
// and for exhaustiveness tests over Table.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTenant, EntityProperty, EntityRoom, EntityBill, EntityPayment,
		EntityExpense, EntityComplaint, EntityNotice, EntityVisitor,
		EntityStaff, EntityExitClearance, EntityApproval, EntityMeterReading,
		EntityCharge, EntityRole, EntityWorkspace, EntityWorkflow,
	}
}
