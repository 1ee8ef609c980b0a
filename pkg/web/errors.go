package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/errs"
)

// Problem type identifiers for the audit query surface.
const (
	typeInvalidAuditQuery  = "invalid_audit_query"
	typeAuditEventNotFound = "audit_event_not_found"
	typeAuditStoreFailure  = "audit_store_failure"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType(typeInvalidAuditQuery).
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(typeAuditEventNotFound).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType(typeAuditStoreFailure).
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleRecorderError maps audit-layer errors onto problem responses.
func handleRecorderError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, audit.ErrWorkspaceRequired),
		errors.Is(err, audit.ErrNegativeOffset):
		return badRequest(c, err.Error())
	case errors.Is(err, audit.ErrEventNotFound):
		return notFound(c, err.Error())
	case errs.HasCode(err, errs.CodeValidation):
		return badRequest(c, err.Error())
	default:
		return internalError(c, err)
	}
}
