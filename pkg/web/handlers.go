// Package web provides the HTTP surface over the audit trail: the query
// endpoint compliance tooling reads and the per-entity history view.
package web

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/models"
)

type APIHandlers struct {
	recorder  audit.Recorder
	validator *validator.Validate
}

func NewAPIHandlers(recorder audit.Recorder, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		recorder:  recorder,
		validator: validator,
	}
}

// GetAuditEvents serves GET /audit-events.
func (h *APIHandlers) GetAuditEvents(c fiber.Ctx) error {
	query, err := h.parseAuditQuery(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	events, err := h.recorder.Query(c.Context(), *query)
	if err != nil {
		return handleRecorderError(c, err)
	}

	return c.JSON(fiber.Map{
		"events": events,
		"pagination": fiber.Map{
			"limit":  query.Limit,
			"offset": query.Offset,
		},
	})
}

// GetEntityHistory serves GET /entities/:type/:id/history.
func (h *APIHandlers) GetEntityHistory(c fiber.Ctx) error {
	entityType := models.EntityType(c.Params("type"))
	if !entityType.IsValid() {
		return badRequest(c, "Unknown entity type: "+c.Params("type"))
	}

	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return badRequest(c, "workspace_id is required")
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	events, err := h.recorder.EntityHistory(c.Context(), workspaceID, entityType, c.Params("id"), limit, offset)
	if err != nil {
		return handleRecorderError(c, err)
	}

	return c.JSON(fiber.Map{
		"entity_type": entityType,
		"entity_id":   c.Params("id"),
		"events":      events,
	})
}

func (h *APIHandlers) parseAuditQuery(c fiber.Ctx) (*audit.Query, error) {
	query := &audit.Query{
		WorkspaceID: c.Query("workspace_id"),
		EntityID:    c.Query("entity_id"),
		ActorID:     c.Query("actor_id"),
	}

	if raw := c.Query("entity_type"); raw != "" {
		entityType := models.EntityType(raw)
		query.EntityType = &entityType
	}

	if raw := c.Query("action"); raw != "" {
		action := models.AuditAction(raw)
		query.Action = &action
	}

	if raw := c.Query("from_date"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}

		query.From = &from
	}

	if raw := c.Query("to_date"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}

		query.To = &to
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return nil, err
	}

	query.Limit = limit
	query.Offset = offset

	if err := h.validator.Struct(query); err != nil {
		return nil, err
	}

	return query, nil
}

func parsePagination(c fiber.Ctx) (int, int, error) {
	var (
		limit  int
		offset int
		err    error
	)

	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}

	return limit, offset, nil
}
