// Package workflow implements the orchestration engine: it executes a
// workflow definition's steps strictly in order, rolls completed steps back
// in reverse order when a required step fails, and fans out cascades, audit
// events and notifications after a successful run. The only cross-invocation
// coordination is the idempotency key; everything else is per-run state.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/cascade"
	"github.com/stayware/stayflow/pkg/errs"
	"github.com/stayware/stayflow/pkg/idempotency"
	"github.com/stayware/stayflow/pkg/models"
	"github.com/stayware/stayflow/pkg/notification"
	"github.com/stayware/stayflow/pkg/otelhelper"
)

// Engine wires the step executor to the audit recorder, cascade applier,
// notification dispatcher and idempotency store. It holds no per-run state
// and is safe for concurrent use.
type Engine struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	audit         audit.Recorder
	idempotency   idempotency.Store
	cascades      cascade.Applier
	notifications notification.Dispatcher
	ttl           time.Duration
}

// EngineConfig configures a new engine. Audit is required; the other
// collaborators are optional and their features degrade to no-ops when
// absent.
type EngineConfig struct {
	Logger        *slog.Logger
	Tracer        trace.Tracer
	Audit         audit.Recorder
	Idempotency   idempotency.Store
	Cascades      cascade.Applier
	Notifications notification.Dispatcher

	// IdempotencyTTL bounds the deduplication window. Zero means
	// idempotency.DefaultTTL.
	IdempotencyTTL time.Duration
}

func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}

	return &Engine{
		logger:        logger.With("module", "workflow_engine"),
		tracer:        cfg.Tracer,
		audit:         cfg.Audit,
		idempotency:   cfg.Idempotency,
		cascades:      cfg.Cascades,
		notifications: cfg.Notifications,
		ttl:           ttl,
	}
}

// Execute runs the definition against the input as one logical unit.
//
// A non-nil error is returned only for caller mistakes (invalid definition
// or arguments) and for a duplicate invocation whose original is still in
// flight. A required step's failure is not an error at this level: the
// engine rolls back completed steps and reports the failure on the returned
// Result, which is the externally observed outcome either way.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func Execute[I, O any](
	ctx context.Context,
	engine *Engine,
	def *Definition[I, O],
	input I,
	actorID string,
	actorRole models.ActorRole,
	workspaceID string,
	opts Options,
) (*Result[O], error) {
	const op = "workflow.Execute"

	if err := def.Validate(); err != nil {
		return nil, errs.E(op, errs.CodeValidation, "invalid workflow definition", err)
	}

	if actorID == "" || workspaceID == "" {
		return nil, errs.E(op, errs.CodeValidation, "actor and workspace are required")
	}

	if !actorRole.IsValid() {
		return nil, errs.E(op, errs.CodeValidation, fmt.Sprintf("unknown actor role %q", actorRole))
	}

	logger := engine.logger.With(
		"workflow_name", def.Name,
		"actor_id", actorID,
		"workspace_id", workspaceID,
	)

	// Idempotency check. A backing-store error disables the guarantee for
	// this invocation; it never fails the workflow.
	if opts.IdempotencyKey != "" && engine.idempotency != nil {
		cached, err := checkIdempotency[O](ctx, engine, def.Name, actorID, workspaceID, opts.IdempotencyKey, logger)
		if err != nil {
			return nil, err
		}

		if cached != nil {
			return cached, nil
		}
	}

	wctx := &models.WorkflowContext{
		ID:           "wf-" + uuid.New().String()[:8],
		WorkflowName: def.Name,
		ActorID:      actorID,
		ActorRole:    actorRole,
		WorkspaceID:  workspaceID,
		StartedAt:    time.Now().UTC(),
		Metadata:     opts.Metadata,
	}

	logger = logger.With("workflow_id", wctx.ID)
	logger.InfoContext(ctx, "starting workflow", "steps_total", len(def.Steps))

	if engine.tracer != nil {
		var span trace.Span
		ctx, span = otelhelper.StartSpan(ctx, engine.tracer, "workflow.execute",
			attribute.String(otelhelper.WorkflowIDKey, wctx.ID),
			attribute.String(otelhelper.WorkflowNameKey, def.Name),
			attribute.String(otelhelper.WorkspaceIDKey, workspaceID),
		)
		defer span.End()
	}

	results := make(Results, len(def.Steps))

	var failedOptional []string

	for _, step := range def.Steps {
		stepCtx := ctx

		var span trace.Span
		if engine.tracer != nil {
			stepCtx, span = otelhelper.StartSpan(ctx, engine.tracer, "workflow.step",
				attribute.String(otelhelper.WorkflowIDKey, wctx.ID),
				attribute.String(otelhelper.StepNameKey, step.Name),
			)
		}

		stepResult, err := executeStep(stepCtx, wctx, step.Name, func(c context.Context) (any, error) {
			return step.Run(c, wctx, input, results)
		})

		if span != nil {
			if err != nil {
				otelhelper.SetError(span, err)
			}

			span.End()
		}

		if err == nil {
			results[step.Name] = stepResult

			continue
		}

		if step.Optional {
			logger.WarnContext(ctx, "optional step failed", "step", step.Name, "error", err)
			failedOptional = append(failedOptional, step.Name)

			continue
		}

		logger.ErrorContext(ctx, "required step failed, rolling back", "step", step.Name, "error", err)
		rollbackCompleted(ctx, engine, def, wctx, input, results, logger)

		failure := &Result[O]{
			WorkflowID:          wctx.ID,
			StepsCompleted:      len(wctx.CompletedSteps()),
			StepsTotal:          len(def.Steps),
			FailedOptionalSteps: failedOptional,
			Errors: []ErrorDetail{{
				Step:    step.Name,
				Code:    errs.CodeOf(err),
				Message: err.Error(),
			}},
		}

		storeIdempotencyAsync(ctx, engine, def.Name, actorID, workspaceID, opts.IdempotencyKey, failure, logger)

		return failure, nil
	}

	// The output builder is pure over the results map, so run it before any
	// side effects: if it fails, the run can still be rolled back cleanly.
	output, err := def.Output(input, results)
	if err != nil {
		logger.ErrorContext(ctx, "output builder failed, rolling back", "error", err)
		rollbackCompleted(ctx, engine, def, wctx, input, results, logger)

		failure := &Result[O]{
			WorkflowID:          wctx.ID,
			StepsCompleted:      len(wctx.CompletedSteps()),
			StepsTotal:          len(def.Steps),
			FailedOptionalSteps: failedOptional,
			Errors: []ErrorDetail{{
				Code:    errs.CodeOf(err),
				Message: err.Error(),
			}},
		}

		storeIdempotencyAsync(ctx, engine, def.Name, actorID, workspaceID, opts.IdempotencyKey, failure, logger)

		return failure, nil
	}

	applyCascades(ctx, engine, def, input, results, logger)

	auditIDs := writeAuditBatch(ctx, engine, def, wctx, input, results, failedOptional, opts, logger)
	notificationIDs := dispatchNotifications(ctx, engine, def, input, results, opts, logger)

	result := &Result[O]{
		Success:             true,
		Output:              output,
		WorkflowID:          wctx.ID,
		StepsCompleted:      len(wctx.CompletedSteps()),
		StepsTotal:          len(def.Steps),
		AuditEventIDs:       auditIDs,
		NotificationIDs:     notificationIDs,
		FailedOptionalSteps: failedOptional,
	}

	storeIdempotencyAsync(ctx, engine, def.Name, actorID, workspaceID, opts.IdempotencyKey, result, logger)

	logger.InfoContext(ctx, "workflow completed",
		"steps_completed", result.StepsCompleted,
		"failed_optional_steps", len(failedOptional),
	)

	return result, nil
}

// checkIdempotency returns the cached result for a duplicate invocation, or
// nil when the workflow should execute normally.
func checkIdempotency[O any](ctx context.Context, engine *Engine, workflowName, actorID, workspaceID, key string, logger *slog.Logger) (*Result[O], error) {
	checked, err := engine.idempotency.Check(ctx, key, workflowName, actorID, workspaceID, engine.ttl)
	if err != nil {
		logger.WarnContext(ctx, "idempotency check unavailable, proceeding without deduplication", "error", err)

		return nil, nil
	}

	if !checked.Duplicate {
		return nil, nil
	}

	if checked.Cached == nil {
		// The original invocation holds the key but has not stored its
		// result yet.
		return nil, errs.E("workflow.Execute", errs.CodeConcurrentModification,
			"an invocation with this idempotency key is already in progress", idempotency.ErrResultPending)
	}

	var cached Result[O]
	if err := json.Unmarshal(checked.Cached, &cached); err != nil {
		logger.WarnContext(ctx, "failed to decode cached result, proceeding without deduplication", "error", err)

		return nil, nil
	}

	cached.Duplicate = true
	logger.InfoContext(ctx, "returning cached workflow result", "idempotency_key", key)

	return &cached, nil
}

// rollbackCompleted invokes each completed step's rollback in reverse
// completion order. Rollbacks are best-effort: a failure is logged and the
// remaining rollbacks still run, since earlier steps' resources must be
// released regardless.
func rollbackCompleted[I, O any](ctx context.Context, engine *Engine, def *Definition[I, O], wctx *models.WorkflowContext, input I, results Results, logger *slog.Logger) {
	completed := wctx.CompletedSteps()

	for i := len(completed) - 1; i >= 0; i-- {
		record := completed[i]

		step, ok := def.stepByName(record.Name)
		if !ok || step.Rollback == nil {
			continue
		}

		if err := runRollback(ctx, step, input, results); err != nil {
			logger.ErrorContext(ctx, "rollback failed", "step", record.Name, "error", err)
		} else {
			logger.InfoContext(ctx, "rolled back step", "step", record.Name)
		}
	}
}

// runRollback shields the rollback loop from panics inside a compensation
// function.
func runRollback[I any](ctx context.Context, step Step[I], input I, results Results) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("rollback panicked: %v", recovered)
		}
	}()

	return step.Rollback(ctx, input, results)
}

func applyCascades[I, O any](ctx context.Context, engine *Engine, def *Definition[I, O], input I, results Results, logger *slog.Logger) {
	if engine.cascades == nil || def.Cascades == nil {
		return
	}

	for _, effect := range def.Cascades(input, results) {
		if err := engine.cascades.Apply(ctx, effect); err != nil {
			logger.ErrorContext(ctx, "cascade failed",
				"entity_type", effect.EntityType,
				"entity_id", effect.EntityID,
				"action", effect.Action,
				"error", err,
			)
		}
	}
}

func writeAuditBatch[I, O any](ctx context.Context, engine *Engine, def *Definition[I, O], wctx *models.WorkflowContext, input I, results Results, failedOptional []string, opts Options, logger *slog.Logger) []string {
	if engine.audit == nil || opts.SkipAudit {
		return nil
	}

	var events []*models.AuditEvent
	if def.AuditEvents != nil {
		events = def.AuditEvents(wctx, input, results)
	}

	for _, event := range events {
		stampEvent(event, wctx, opts)
	}

	if len(failedOptional) > 0 {
		summary := audit.NewEvent(
			models.EntityWorkflow,
			wctx.ID,
			models.ActionComplete,
			wctx.ActorID,
			wctx.ActorRole,
			wctx.WorkspaceID,
			nil, nil,
		)
		summary.Metadata = make(map[string]any, len(wctx.Metadata)+2)
		for k, v := range wctx.Metadata {
			summary.Metadata[k] = v
		}

		summary.Metadata["workflow_name"] = wctx.WorkflowName
		summary.Metadata["failed_optional_steps"] = failedOptional
		stampEvent(summary, wctx, opts)
		events = append(events, summary)
	}

	if len(events) == 0 {
		return nil
	}

	ids, err := engine.audit.LogBatch(ctx, events)
	if err != nil {
		// A lost audit batch after the steps' mutations are durable is a
		// known gap; it is logged loudly rather than failing the run.
		logger.ErrorContext(ctx, "audit batch write failed", "events", len(events), "error", err)

		return nil
	}

	return ids
}

func stampEvent(event *models.AuditEvent, wctx *models.WorkflowContext, opts Options) {
	if event.ActorID == "" {
		event.ActorID = wctx.ActorID
	}

	if event.ActorRole == "" {
		event.ActorRole = wctx.ActorRole
	}

	if event.WorkspaceID == "" {
		event.WorkspaceID = wctx.WorkspaceID
	}

	if event.IPAddress == "" {
		event.IPAddress = opts.IPAddress
	}

	if event.UserAgent == "" {
		event.UserAgent = opts.UserAgent
	}
}

func dispatchNotifications[I, O any](ctx context.Context, engine *Engine, def *Definition[I, O], input I, results Results, opts Options, logger *slog.Logger) []string {
	if engine.notifications == nil || opts.SkipNotifications || def.Notifications == nil {
		return nil
	}

	payloads := def.Notifications(input, results)
	if len(payloads) == 0 {
		return nil
	}

	ids, err := engine.notifications.SendBatch(ctx, payloads)
	if err != nil {
		logger.ErrorContext(ctx, "notification dispatch failed", "payloads", len(payloads), "error", err)
	}

	return ids
}

// storeIdempotencyAsync persists the result without blocking the caller's
// response. A failed store only costs the dedup optimization.
func storeIdempotencyAsync[O any](ctx context.Context, engine *Engine, workflowName, actorID, workspaceID, key string, result *Result[O], logger *slog.Logger) {
	if key == "" || engine.idempotency == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		logger.ErrorContext(ctx, "failed to marshal result for idempotency store", "error", err)

		return
	}

	storeCtx := context.WithoutCancel(ctx)

	go func() {
		if err := engine.idempotency.Store(storeCtx, key, workflowName, payload, actorID, workspaceID, engine.ttl); err != nil {
			logger.ErrorContext(storeCtx, "failed to store idempotency result", "idempotency_key", key, "error", err)
		}
	}()
}
