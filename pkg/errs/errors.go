// Package errs provides the fixed error-code set shared by the workflow
// engine and its callers, plus a wrapper carrying operation context.
package errs

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code surfaced to callers.
type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeDuplicateEntry   Code = "DUPLICATE_ENTRY"

	// Domain conflicts.
	CodeHasPendingDues           Code = "HAS_PENDING_DUES"
	CodeAlreadyExited            Code = "ALREADY_EXITED"
	CodeAtCapacity               Code = "AT_CAPACITY"
	CodePaymentExceedsDue        Code = "PAYMENT_EXCEEDS_DUE"
	CodeRefundExceedsBalance     Code = "REFUND_EXCEEDS_BALANCE"
	CodeApprovalAlreadyProcessed Code = "APPROVAL_ALREADY_PROCESSED"
	CodeConcurrentModification   Code = "CONCURRENT_MODIFICATION"

	// Workflow machinery.
	CodeWorkflowStepFailed Code = "WORKFLOW_STEP_FAILED"
	CodeWorkflowCancelled  Code = "WORKFLOW_CANCELLED"
	CodeWorkflowTimeout    Code = "WORKFLOW_TIMEOUT"

	CodeInternal Code = "INTERNAL_ERROR"
)

// Error wraps an underlying error with the operation that produced it and
// a stable code for API responses.
type Error struct {
	Op      string // operation name, e.g. "workflow.Execute"
	Code    Code
	Message string // human-readable message
	Err     error  // underlying error, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E constructs an *Error. The variadic tail accepts an optional underlying
// error.
func E(op string, code Code, message string, err ...error) *Error {
	e := &Error{Op: op, Code: code, Message: message}
	if len(err) > 0 {
		e.Err = err[0]
	}

	return e
}

// CodeOf extracts the code from err, walking the wrap chain. Unknown errors
// map to CodeInternal; nil maps to the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return CodeInternal
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
