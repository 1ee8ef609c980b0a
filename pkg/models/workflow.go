// Package models defines the core domain models for workflow orchestration:
// workflow runs and their steps, audit events, notification payloads,
// cascade effects and idempotency records.
package models

import "time"

// StepStatus is the lifecycle state of a workflow step. Transitions are
// pending -> in_progress -> completed|failed; completed and failed are
// terminal.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// WorkflowStep records one named unit of work inside a workflow run: its
// position, timing and outcome. Steps are owned exclusively by their parent
// WorkflowContext and remain visible for debugging even when the workflow
// as a whole fails.
type WorkflowStep struct {
	Seq         int        `json:"seq"`
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// WorkflowContext is the in-memory state of one workflow invocation. It is
// created at the start of execution, mutated only by the step executor
// appending and updating steps, and discarded after the call returns. Only
// its effects (audit events, the idempotency record) are durable.
type WorkflowContext struct {
	ID           string          `json:"id"`
	WorkflowName string          `json:"workflow_name"`
	ActorID      string          `json:"actor_id"`
	ActorRole    ActorRole       `json:"actor_role"`
	WorkspaceID  string          `json:"workspace_id"`
	StartedAt    time.Time       `json:"started_at"`
	Steps        []*WorkflowStep `json:"steps"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

// CompletedSteps returns the steps that reached completed status, in
// completion order.
func (c *WorkflowContext) CompletedSteps() []*WorkflowStep {
	completed := make([]*WorkflowStep, 0, len(c.Steps))

	for _, step := range c.Steps {
		if step.Status == StepCompleted {
			completed = append(completed, step)
		}
	}

	return completed
}
