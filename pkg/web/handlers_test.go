package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/models"
	"github.com/stayware/stayflow/pkg/web"
)

func setupTestApp(t *testing.T) (*fiber.App, *audit.MemoryRecorder) {
	t.Helper()

	recorder := audit.NewMemoryRecorder()
	handlers := web.NewAPIHandlers(recorder, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	app.Get("/audit-events", handlers.GetAuditEvents)
	app.Get("/entities/:type/:id/history", handlers.GetEntityHistory)

	return app, recorder
}

func seedEvents(t *testing.T, recorder *audit.MemoryRecorder) {
	t.Helper()

	_, err := recorder.LogBatch(context.Background(), []*models.AuditEvent{
		audit.NewEvent(models.EntityTenant, "t-1", models.ActionCreate, "owner-1", models.RoleOwner, "ws-1", nil, map[string]any{"name": "Asha"}),
		audit.NewEvent(models.EntityTenant, "t-1", models.ActionStatusChange, "owner-1", models.RoleOwner, "ws-1",
			map[string]any{"status": "active"}, map[string]any{"status": "exited"}),
		audit.NewEvent(models.EntityBill, "b-1", models.ActionCreate, "staff-1", models.RoleStaff, "ws-1", nil, nil),
		audit.NewEvent(models.EntityTenant, "t-2", models.ActionCreate, "owner-2", models.RoleOwner, "ws-2", nil, nil),
	})
	require.NoError(t, err)
}

type eventsResponse struct {
	Events []models.AuditEvent `json:"events"`
}

func TestGetAuditEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		url            string
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name:           "workspace scope returns all workspace events",
			url:            "/audit-events?workspace_id=ws-1",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result eventsResponse
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Len(t, result.Events, 3)

				for _, event := range result.Events {
					assert.Equal(t, "ws-1", event.WorkspaceID)
				}
			},
		},
		{
			name:           "entity type filter",
			url:            "/audit-events?workspace_id=ws-1&entity_type=bill",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result eventsResponse
				require.NoError(t, json.Unmarshal(body, &result))
				require.Len(t, result.Events, 1)
				assert.Equal(t, models.EntityBill, result.Events[0].EntityType)
			},
		},
		{
			name:           "action filter",
			url:            "/audit-events?workspace_id=ws-1&action=status_change",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result eventsResponse
				require.NoError(t, json.Unmarshal(body, &result))
				require.Len(t, result.Events, 1)
				assert.Equal(t, []string{"status"}, result.Events[0].FieldsChanged)
			},
		},
		{
			name:           "missing workspace is rejected",
			url:            "/audit-events",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed from_date is rejected",
			url:            "/audit-events?workspace_id=ws-1&from_date=yesterday",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed limit is rejected",
			url:            "/audit-events?workspace_id=ws-1&limit=many",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "limit above cap is rejected",
			url:            "/audit-events?workspace_id=ws-1&limit=1000",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative offset is rejected",
			url:            "/audit-events?workspace_id=ws-1&offset=-1",
			expectedStatus: http.StatusBadRequest,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var problem struct {
					Type string `json:"type"`
				}
				require.NoError(t, json.Unmarshal(body, &problem))
				assert.Equal(t, "invalid_audit_query", problem.Type)
			},
		},
		{
			name:           "pagination is echoed back",
			url:            "/audit-events?workspace_id=ws-1&limit=2&offset=1",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result struct {
					Events     []models.AuditEvent `json:"events"`
					Pagination struct {
						Limit  int `json:"limit"`
						Offset int `json:"offset"`
					} `json:"pagination"`
				}
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Len(t, result.Events, 2)
				assert.Equal(t, 2, result.Pagination.Limit)
				assert.Equal(t, 1, result.Pagination.Offset)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, recorder := setupTestApp(t)
			seedEvents(t, recorder)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}

func TestGetEntityHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		url            string
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name:           "history is newest first",
			url:            "/entities/tenant/t-1/history?workspace_id=ws-1",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result eventsResponse
				require.NoError(t, json.Unmarshal(body, &result))
				require.Len(t, result.Events, 2)
				assert.Equal(t, models.ActionStatusChange, result.Events[0].Action)
				assert.Equal(t, models.ActionCreate, result.Events[1].Action)
			},
		},
		{
			name:           "other workspace sees nothing",
			url:            "/entities/tenant/t-1/history?workspace_id=ws-2",
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var result eventsResponse
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Empty(t, result.Events)
			},
		},
		{
			name:           "unknown entity type is rejected",
			url:            "/entities/spaceship/x/history?workspace_id=ws-1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing workspace is rejected",
			url:            "/entities/tenant/t-1/history",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative offset is rejected",
			url:            "/entities/tenant/t-1/history?workspace_id=ws-1&offset=-1",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, recorder := setupTestApp(t)
			seedEvents(t, recorder)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}
