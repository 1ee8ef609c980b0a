package workflow

import "github.com/stayware/stayflow/pkg/errs"

// ErrorDetail is one error surfaced on a workflow result.
type ErrorDetail struct {
	Step    string    `json:"step,omitempty"`
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// Result is the externally observed outcome of one workflow invocation.
// For a failed run the only applied side effects are whatever each
// completed step's rollback could not undo; no cascades, audit events or
// notifications are emitted.
type Result[O any] struct {
	Success         bool     `json:"success"`
	Output          O        `json:"output"`
	WorkflowID      string   `json:"workflow_id"`
	StepsCompleted  int      `json:"steps_completed"`
	StepsTotal      int      `json:"steps_total"`
	AuditEventIDs   []string `json:"audit_event_ids,omitempty"`
	NotificationIDs []string `json:"notification_ids,omitempty"`

	// FailedOptionalSteps names best-effort steps that failed during an
	// otherwise successful run.
	FailedOptionalSteps []string `json:"failed_optional_steps,omitempty"`

	Errors []ErrorDetail `json:"errors,omitempty"`

	// Duplicate marks a result served from the idempotency cache. It is
	// excluded from serialization so a deduplicated response stays
	// byte-identical to the original.
	Duplicate bool `json:"-"`
}
