package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/eventbus"
	"github.com/testsmith-ai/testsmith/pkg/events"
	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/testsmith-ai/testsmith/pkg/otelhelper"
)

// Outcome tags the result of one Run call.
type Outcome string

const (
	OutcomeDone      Outcome = "done"
	OutcomeSuspended Outcome = "suspended"
	OutcomeFailed    Outcome = "failed"
)

// RunResult is the value a Run call returns instead of signalling pipeline
// outcomes through errors. Suspension is set only for OutcomeSuspended; a
// failed run carries its message in State.ErrorMessage.
type RunResult struct {
	Outcome    Outcome
	State      models.WorkflowState
	Suspension *models.Suspension
}

// Runner owns the execution loop: load checkpoint, dispatch the node for the
// current stage, merge its patch, checkpoint, repeat until the pipeline
// completes, fails, or parks for a person.
type Runner struct {
	router *Router
	store  checkpoint.Store
	bus    eventbus.EventPublisher
	logger *slog.Logger
	tracer trace.Tracer
}

// NewRunner wires the runner. bus may be nil when no event transport is
// configured.
func NewRunner(router *Router, store checkpoint.Store, bus eventbus.EventPublisher, logger *slog.Logger) *Runner {
	return &Runner{
		router: router,
		store:  store,
		bus:    bus,
		logger: logger.With("module", "engine"),
		tracer: otel.Tracer("github.com/testsmith-ai/testsmith/pkg/engine"),
	}
}

// CreateSession initializes a fresh workflow state, checkpoints it, and
// returns it without executing any stage.
func (r *Runner) CreateSession(ctx context.Context, rawInput string, teamCtx models.TeamContext, confidenceThreshold float64) (models.WorkflowState, error) {
	state := models.NewWorkflowState(rawInput, teamCtx, confidenceThreshold)

	if err := r.store.Save(ctx, &checkpoint.Checkpoint{SessionID: state.ID, State: state}); err != nil {
		return models.WorkflowState{}, fmt.Errorf("failed to checkpoint new session: %w", err)
	}

	r.publish(ctx, events.SessionCreated{
		BaseEvent: events.NewBaseEvent(events.SessionCreatedEvent, state.ID),
		RawInput:  rawInput,
		Framework: teamCtx.Framework,
	})

	r.logger.Info("Session created", "session_id", state.ID, "framework", teamCtx.Framework)

	return state, nil
}

// Run drives the session forward until it completes, fails, or suspends.
// input carries the answers or gate decision for a suspended session and is
// consumed by the first node invocation.
func (r *Runner) Run(ctx context.Context, sessionID string, input *models.ResumeInput) (RunResult, error) {
	cp, err := r.store.Load(ctx, sessionID)
	if err != nil {
		return RunResult{}, err
	}

	state := cp.State

	switch state.Status {
	case models.StatusCompleted:
		return RunResult{Outcome: OutcomeDone, State: state}, nil
	case models.StatusFailed:
		return RunResult{Outcome: OutcomeFailed, State: state}, nil
	}

	if cp.Suspension != nil {
		if input == nil {
			return RunResult{Outcome: OutcomeSuspended, State: state, Suspension: cp.Suspension}, nil
		}

		r.publish(ctx, events.SessionResumed{
			BaseEvent: events.NewBaseEvent(events.SessionResumedEvent, sessionID),
			Stage:     state.CurrentStage,
		})
	}

	return r.loop(ctx, state, input)
}

func (r *Runner) loop(ctx context.Context, state models.WorkflowState, input *models.ResumeInput) (RunResult, error) {
	for !state.CurrentStage.Terminal() {
		stage := state.CurrentStage

		node, err := r.router.Node(stage)
		if err != nil {
			return r.fail(ctx, state, err)
		}

		result, err := r.runNode(ctx, node, state, input)
		input = nil

		if err != nil {
			return r.fail(ctx, state, err)
		}

		costDelta := result.Patch.CostDelta
		state = models.Apply(state, result.Patch)

		if result.Suspend != nil {
			if err := r.save(ctx, state, result.Suspend); err != nil {
				return RunResult{}, err
			}

			r.publish(ctx, events.SessionSuspended{
				BaseEvent: events.NewBaseEvent(events.SessionSuspendedEvent, state.ID),
				Stage:     state.CurrentStage,
				Kind:      result.Suspend.Kind,
			})

			return RunResult{Outcome: OutcomeSuspended, State: state, Suspension: result.Suspend}, nil
		}

		if err := r.save(ctx, state, nil); err != nil {
			return RunResult{}, err
		}

		r.publish(ctx, events.StageCompleted{
			BaseEvent: events.NewBaseEvent(events.StageCompletedEvent, state.ID),
			Stage:     stage,
			NextStage: state.CurrentStage,
			CostUSD:   costDelta,
		})

		if state.Status == models.StatusFailed {
			return RunResult{Outcome: OutcomeFailed, State: state}, nil
		}
	}

	return r.finish(ctx, state)
}

func (r *Runner) runNode(ctx context.Context, node Node, state models.WorkflowState, input *models.ResumeInput) (NodeResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "stage."+string(node.Stage()),
		attribute.String(otelhelper.SessionIDKey, state.ID),
		attribute.String(otelhelper.TraceIDKey, state.TraceID),
		attribute.String(otelhelper.StageKey, string(node.Stage())),
	)
	defer span.End()

	result, err := node.Run(ctx, state, input)
	if err != nil {
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.StageKey, string(node.Stage())))
	}

	return result, err
}

func (r *Runner) finish(ctx context.Context, state models.WorkflowState) (RunResult, error) {
	if state.CurrentStage == models.StageFailed {
		return r.fail(ctx, state, fmt.Errorf("pipeline routed to failure stage: %s", state.ErrorMessage))
	}

	state = models.Apply(state, models.StatePatch{Status: models.StatusPtr(models.StatusCompleted)})

	if err := r.save(ctx, state, nil); err != nil {
		return RunResult{}, err
	}

	r.publish(ctx, events.SessionCompleted{
		BaseEvent:      events.NewBaseEvent(events.SessionCompletedEvent, state.ID),
		ScriptFilename: state.ScriptFilename,
		CostUSD:        state.AccumulatedCostUSD,
		Duration:       time.Since(state.CreatedAt),
	})

	r.logger.Info("Session completed",
		"session_id", state.ID, "script", state.ScriptFilename, "cost_usd", state.AccumulatedCostUSD)

	return RunResult{Outcome: OutcomeDone, State: state}, nil
}

func (r *Runner) fail(ctx context.Context, state models.WorkflowState, cause error) (RunResult, error) {
	r.logger.Error("Session failed", "session_id", state.ID, "stage", state.CurrentStage, "error", cause)

	state = models.Apply(state, models.StatePatch{
		Status:       models.StatusPtr(models.StatusFailed),
		CurrentStage: models.StagePtr(models.StageFailed),
		ErrorMessage: models.StringPtr(cause.Error()),
	})

	if err := r.save(ctx, state, nil); err != nil {
		return RunResult{}, err
	}

	r.publish(ctx, events.SessionFailed{
		BaseEvent: events.NewBaseEvent(events.SessionFailedEvent, state.ID),
		Stage:     state.CurrentStage,
		Error:     cause.Error(),
	})

	return RunResult{Outcome: OutcomeFailed, State: state}, nil
}

// Abandon marks a parked session failed and frees its checkpoint.
func (r *Runner) Abandon(ctx context.Context, sessionID string) error {
	if _, err := r.store.Load(ctx, sessionID); err != nil {
		return err
	}

	if err := r.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	r.publish(ctx, events.SessionAbandoned{
		BaseEvent: events.NewBaseEvent(events.SessionAbandonedEvent, sessionID),
	})

	r.logger.Info("Session abandoned", "session_id", sessionID)

	return nil
}

func (r *Runner) save(ctx context.Context, state models.WorkflowState, suspension *models.Suspension) error {
	err := r.store.Save(ctx, &checkpoint.Checkpoint{
		SessionID:  state.ID,
		State:      state,
		Suspension: suspension,
	})
	if err != nil {
		return fmt.Errorf("failed to checkpoint session %s: %w", state.ID, err)
	}

	return nil
}

func (r *Runner) publish(ctx context.Context, event eventbus.Event) {
	if r.bus == nil {
		return
	}

	var key string
	if carrier, ok := event.(interface{ GetSessionID() string }); ok {
		key = carrier.GetSessionID()
	}

	if err := r.bus.Publish(ctx, key, event); err != nil {
		r.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
