package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayware/stayflow/pkg/errs"
	"github.com/stayware/stayflow/pkg/models"
)

func newWorkflowContext() *models.WorkflowContext {
	return &models.WorkflowContext{
		ID:           "wf-test0001",
		WorkflowName: "executor-test",
		ActorID:      "actor-1",
		ActorRole:    models.RoleOwner,
		WorkspaceID:  "ws-1",
		StartedAt:    time.Now().UTC(),
	}
}

func TestExecuteStep_Success(t *testing.T) {
	t.Parallel()

	wctx := newWorkflowContext()

	result, err := executeStep(context.Background(), wctx, "compute", func(_ context.Context) (any, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	require.Len(t, wctx.Steps, 1)
	step := wctx.Steps[0]
	assert.Equal(t, 1, step.Seq)
	assert.Equal(t, "compute", step.Name)
	assert.Equal(t, models.StepCompleted, step.Status)
	assert.Equal(t, 42, step.Result)
	assert.Empty(t, step.Error)
	require.NotNil(t, step.CompletedAt)
	assert.False(t, step.CompletedAt.Before(step.StartedAt))
}

func TestExecuteStep_Error(t *testing.T) {
	t.Parallel()

	wctx := newWorkflowContext()

	result, err := executeStep(context.Background(), wctx, "broken", func(_ context.Context) (any, error) {
		return "partial", errors.New("backend down")
	})
	require.Error(t, err)
	assert.Nil(t, result, "a failed step must not surface a partial result")

	require.Len(t, wctx.Steps, 1)
	step := wctx.Steps[0]
	assert.Equal(t, models.StepFailed, step.Status)
	assert.Equal(t, "backend down", step.Error)
	assert.Nil(t, step.Result)
	require.NotNil(t, step.CompletedAt)
}

func TestExecuteStep_PanicNormalized(t *testing.T) {
	t.Parallel()

	wctx := newWorkflowContext()

	result, err := executeStep(context.Background(), wctx, "volatile", func(_ context.Context) (any, error) {
		panic("nil map write")
	})
	require.Error(t, err)
	assert.Nil(t, result)

	assert.Equal(t, errs.CodeWorkflowStepFailed, errs.CodeOf(err))
	assert.Contains(t, err.Error(), `step "volatile" panicked`)
	assert.Contains(t, err.Error(), "nil map write")

	require.Len(t, wctx.Steps, 1)
	assert.Equal(t, models.StepFailed, wctx.Steps[0].Status)
}

func TestExecuteStep_SequencesAcrossCalls(t *testing.T) {
	t.Parallel()

	wctx := newWorkflowContext()

	for _, name := range []string{"first", "second", "third"} {
		_, err := executeStep(context.Background(), wctx, name, func(_ context.Context) (any, error) {
			return name, nil
		})
		require.NoError(t, err)
	}

	require.Len(t, wctx.Steps, 3)

	for i, step := range wctx.Steps {
		assert.Equal(t, i+1, step.Seq)
	}

	assert.Len(t, wctx.CompletedSteps(), 3)
}
