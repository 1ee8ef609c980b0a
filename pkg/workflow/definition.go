package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/stayware/stayflow/pkg/models"
)

var (
	// ErrNameRequired is returned when a definition has no name.
	ErrNameRequired = errors.New("workflow definition name is required")

	// ErrNoSteps is returned when a definition declares no steps.
	ErrNoSteps = errors.New("workflow definition has no steps")

	// ErrNoOutput is returned when a definition has no output builder.
	ErrNoOutput = errors.New("workflow definition has no output builder")

	// ErrMissingRollback is returned when a required step defines no rollback
	// and does not acknowledge its absence.
	ErrMissingRollback = errors.New("required step has no rollback")
)

// Step is one named unit of work inside a definition. Steps run strictly in
// declaration order; Run may read earlier steps' outputs from results.
type Step[I any] struct {
	Name string

	// Optional marks the step best-effort: its failure is recorded on the
	// result but does not abort the workflow.
	Optional bool

	// AcknowledgeNoRollback documents at definition time that this required
	// step's effect cannot be compensated (outbound email, third-party
	// calls). Without it, a required step lacking a Rollback is rejected by
	// Validate.
	AcknowledgeNoRollback bool

	// Run performs the step. Its result is stored under the step name.
	Run func(ctx context.Context, wctx *models.WorkflowContext, input I, results Results) (any, error)

	// Rollback compensates a completed step when a later required step
	// fails. Rollbacks run in reverse completion order and are best-effort.
	Rollback func(ctx context.Context, input I, results Results) error
}

// Definition is a declarative, reusable workflow template. It is stateless
// and shared across invocations; all per-run state lives in the
// WorkflowContext and Results.
type Definition[I, O any] struct {
	Name  string
	Steps []Step[I]

	// Cascades builds the side-effect mutations applied after all required
	// steps succeed. Optional.
	Cascades func(input I, results Results) []models.CascadeEffect

	// AuditEvents builds the events batch-written for a successful run.
	// Optional.
	AuditEvents func(wctx *models.WorkflowContext, input I, results Results) []*models.AuditEvent

	// Notifications builds the payloads dispatched after a successful run.
	// Optional.
	Notifications func(input I, results Results) []*models.NotificationPayload

	// Output assembles the caller-visible output from the full results map.
	Output func(input I, results Results) (O, error)
}

// Validate checks the definition is executable: named, at least one step,
// unique step names, runnable steps, an output builder, and a rollback (or
// an explicit acknowledgement of its absence) on every required step.
func (d *Definition[I, O]) Validate() error {
	if d.Name == "" {
		return ErrNameRequired
	}

	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSteps, d.Name)
	}

	if d.Output == nil {
		return fmt.Errorf("%w: %s", ErrNoOutput, d.Name)
	}

	seen := make(map[string]struct{}, len(d.Steps))

	for i, step := range d.Steps {
		if step.Name == "" {
			return fmt.Errorf("workflow %s: step %d has no name", d.Name, i+1)
		}

		if _, dup := seen[step.Name]; dup {
			return fmt.Errorf("workflow %s: duplicate step name %q", d.Name, step.Name)
		}

		seen[step.Name] = struct{}{}

		if step.Run == nil {
			return fmt.Errorf("workflow %s: step %q has no run function", d.Name, step.Name)
		}

		if !step.Optional && step.Rollback == nil && !step.AcknowledgeNoRollback {
			return fmt.Errorf("%w: %s/%s", ErrMissingRollback, d.Name, step.Name)
		}
	}

	return nil
}

func (d *Definition[I, O]) stepByName(name string) (Step[I], bool) {
	for _, step := range d.Steps {
		if step.Name == name {
			return step, true
		}
	}

	return Step[I]{}, false
}
