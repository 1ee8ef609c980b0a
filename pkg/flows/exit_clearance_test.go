package flows_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayware/stayflow/pkg/errs"
	"github.com/stayware/stayflow/pkg/flows"
	"github.com/stayware/stayflow/pkg/models"
	"github.com/stayware/stayflow/pkg/workflow"
)

// fakeDesk implements flows.ExitDesk in memory.
type fakeDesk struct {
	calls []string

	dues           float64
	deposit        float64
	failMeterWith  error
	failTenancyErr error
}

func (d *fakeDesk) OutstandingDues(_ context.Context, _, _ string) (float64, error) {
	d.calls = append(d.calls, "OutstandingDues")

	return d.dues, nil
}

func (d *fakeDesk) CreateClearance(_ context.Context, _, _, _ string) (string, error) {
	d.calls = append(d.calls, "CreateClearance")

	return "clr-1", nil
}

func (d *fakeDesk) DeleteClearance(_ context.Context, clearanceID string) error {
	d.calls = append(d.calls, "DeleteClearance:"+clearanceID)

	return nil
}

func (d *fakeDesk) CloseTenancy(_ context.Context, _ string) error {
	d.calls = append(d.calls, "CloseTenancy")

	return d.failTenancyErr
}

func (d *fakeDesk) ReopenTenancy(_ context.Context, _ string) error {
	d.calls = append(d.calls, "ReopenTenancy")

	return nil
}

func (d *fakeDesk) ReleaseDeposit(_ context.Context, _ string) (float64, error) {
	d.calls = append(d.calls, "ReleaseDeposit")

	return d.deposit, nil
}

func (d *fakeDesk) RecordFinalMeterReading(_ context.Context, _, _ string) (float64, error) {
	d.calls = append(d.calls, "RecordFinalMeterReading")

	if d.failMeterWith != nil {
		return 0, d.failMeterWith
	}

	return 1042.7, nil
}

func exitInput() flows.ExitClearanceInput {
	return flows.ExitClearanceInput{
		WorkspaceID: "ws-1",
		TenantID:    "tenant-1",
		RoomID:      "room-7",
		Reason:      "relocation",
	}
}

func TestProcessExitClearance_Success(t *testing.T) {
	t.Parallel()

	fixture := newFlowFixture()
	desk := &fakeDesk{deposit: 5000}

	result, err := workflow.Execute(context.Background(), fixture.engine, flows.ProcessExitClearance(desk),
		exitInput(), "owner-1", models.RoleOwner, "ws-1", workflow.Options{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "clr-1", result.Output.ClearanceID)
	assert.InDelta(t, 5000, result.Output.RefundAmount, 0.001)
	assert.Equal(t, 5, result.StepsCompleted)

	// Two audit events: the clearance creation and the tenant status change.
	stored := fixture.recorder.All()
	require.Len(t, stored, 2)
	assert.Equal(t, models.EntityExitClearance, stored[0].EntityType)
	assert.Equal(t, models.EntityTenant, stored[1].EntityType)
	assert.Equal(t, models.ActionStatusChange, stored[1].Action)
	assert.Equal(t, []string{"status"}, stored[1].FieldsChanged)

	// The room goes back to vacant.
	applied := fixture.applier.Applied()
	require.Len(t, applied, 1)
	assert.Equal(t, "vacant", applied[0].Data["status"])
}

func TestProcessExitClearance_PendingDuesBlockExit(t *testing.T) {
	t.Parallel()

	fixture := newFlowFixture()
	desk := &fakeDesk{dues: 1300}

	result, err := workflow.Execute(context.Background(), fixture.engine, flows.ProcessExitClearance(desk),
		exitInput(), "owner-1", models.RoleOwner, "ws-1", workflow.Options{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.StepsCompleted)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, errs.CodeHasPendingDues, result.Errors[0].Code)
	assert.Contains(t, result.Errors[0].Message, "1300.00")

	// Nothing past the dues check runs.
	assert.Equal(t, []string{"OutstandingDues"}, desk.calls)
	assert.Empty(t, fixture.recorder.All())
}

func TestProcessExitClearance_TenancyFailureRollsBackClearance(t *testing.T) {
	t.Parallel()

	fixture := newFlowFixture()
	desk := &fakeDesk{failTenancyErr: errors.New("tenancy row locked")}

	result, err := workflow.Execute(context.Background(), fixture.engine, flows.ProcessExitClearance(desk),
		exitInput(), "owner-1", models.RoleOwner, "ws-1", workflow.Options{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, []string{
		"OutstandingDues",
		"CreateClearance",
		"CloseTenancy",
		"DeleteClearance:clr-1",
	}, desk.calls, "the deposit is never touched and the clearance row is removed")
}

func TestProcessExitClearance_MeterReadingIsBestEffort(t *testing.T) {
	t.Parallel()

	fixture := newFlowFixture()
	desk := &fakeDesk{deposit: 5000, failMeterWith: errors.New("meter offline")}

	result, err := workflow.Execute(context.Background(), fixture.engine, flows.ProcessExitClearance(desk),
		exitInput(), "owner-1", models.RoleOwner, "ws-1", workflow.Options{})
	require.NoError(t, err)

	assert.True(t, result.Success, "a failed meter reading does not block the exit")
	assert.Equal(t, []string{"record-final-meter-reading"}, result.FailedOptionalSteps)
	assert.Equal(t, 4, result.StepsCompleted)
	assert.Equal(t, 5, result.StepsTotal)

	// The engine adds a summary event on top of the flow's two.
	assert.Len(t, fixture.recorder.All(), 3)
}
