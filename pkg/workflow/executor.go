package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/stayware/stayflow/pkg/errs"
	"github.com/stayware/stayflow/pkg/models"
)

// executeStep runs one named unit of work and records its timing and
// outcome on the workflow context. The step record is appended in
// in_progress state before the function runs, so it stays visible for
// debugging even when the workflow as a whole fails.
//
// A panic inside the function is normalized into a WORKFLOW_STEP_FAILED
// error; callers never observe raw panic values.
func executeStep(ctx context.Context, wctx *models.WorkflowContext, name string, fn func(context.Context) (any, error)) (result any, err error) {
	step := &models.WorkflowStep{
		Seq:       len(wctx.Steps) + 1,
		Name:      name,
		Status:    models.StepInProgress,
		StartedAt: time.Now().UTC(),
	}
	wctx.Steps = append(wctx.Steps, step)

	defer func() {
		if recovered := recover(); recovered != nil {
			err = errs.E(
				"workflow.executeStep",
				errs.CodeWorkflowStepFailed,
				fmt.Sprintf("step %q panicked: %v", name, recovered),
			)
			finishStep(step, models.StepFailed, nil, err)
		}
	}()

	result, err = fn(ctx)
	if err != nil {
		finishStep(step, models.StepFailed, nil, err)

		return nil, err
	}

	finishStep(step, models.StepCompleted, result, nil)

	return result, nil
}

func finishStep(step *models.WorkflowStep, status models.StepStatus, result any, err error) {
	now := time.Now().UTC()
	step.Status = status
	step.CompletedAt = &now
	step.Result = result

	if err != nil {
		step.Error = err.Error()
	}
}
