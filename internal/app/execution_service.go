package app

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/core/guardrail"
	"github.com/example/workhub/internal/core/permission"
	"github.com/example/workhub/internal/core/run"
	"github.com/example/workhub/internal/core/task"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

// Event types appended to the execution log.
const (
	EventTaskStarted            = "task_started"
	EventTaskCompleted          = "task_completed"
	EventGuardrailBlocked       = "guardrail_blocked"
	EventGuardrailNeedsApproval = "guardrail_needs_approval"
	EventSteer                  = "steer"
	EventRunPaused              = "run_paused"
	EventRunResumed             = "run_resumed"
	EventRunCancelled           = "run_cancelled"
)

const actorTypeUser = "user"

const executionScopeName = "github.com/example/workhub/app/execution"

// ExecutionServiceImpl implements the ExecutionService interface.
type ExecutionServiceImpl struct {
	deps        Deps
	decisions   metric.Int64Counter
	transitions metric.Int64Counter
}

// NewExecutionService creates a new ExecutionService with injected dependencies.
// Metrics go to the global meter provider, which is a no-op until telemetry is initialised.
func NewExecutionService(deps Deps) *ExecutionServiceImpl {
	m := otel.Meter(executionScopeName)
	decisions, _ := m.Int64Counter("workhub.guardrail.decisions",
		metric.WithDescription("Guardrail evaluations by folded decision"),
	)
	transitions, _ := m.Int64Counter("workhub.run.transitions",
		metric.WithDescription("Execution run status changes by resulting status"),
	)
	return &ExecutionServiceImpl{deps: deps, decisions: decisions, transitions: transitions}
}

// executeAction describes the differences between start and complete.
type executeAction struct {
	name       string
	eventType  string
	taskTarget task.Status
	runOnAllow run.Status
	validate   func(from task.Status) error
}

var (
	startAction = executeAction{
		name:       "start",
		eventType:  EventTaskStarted,
		taskTarget: task.StatusInProgress,
		runOnAllow: run.StatusInProgress,
		validate: func(from task.Status) error {
			return task.ValidateTransition(from, task.StatusInProgress)
		},
	}
	completeAction = executeAction{
		name:       "complete",
		eventType:  EventTaskCompleted,
		taskTarget: task.StatusDone,
		runOnAllow: run.StatusCompleted,
		validate:   task.ValidateCompletion,
	}
)

// StartTask opens a run and moves the task to in_progress unless a guardrail blocks.
func (s *ExecutionServiceImpl) StartTask(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	return s.execute(ctx, actor, req, startAction)
}

// CompleteTask closes the task's latest run and moves the task to done unless a guardrail blocks.
func (s *ExecutionServiceImpl) CompleteTask(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	return s.execute(ctx, actor, req, completeAction)
}

func (s *ExecutionServiceImpl) execute(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest, action executeAction) (*primary.ExecutionResult, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	mode, err := run.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if req.TaskID == "" {
		return nil, apperr.Validation("task id is required")
	}

	var (
		result   *primary.ExecutionResult
		decision guardrail.Result
		runState run.Status
	)
	err = s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		bundle, err := tx.Tasks().GetBundle(ctx, actor.WorkspaceID, req.TaskID)
		if err != nil {
			return err
		}
		t := bundle.Task
		if err := permission.Check(permission.ActionTaskUpdate, taskFacts(actor, bundle.Todo, t)).Error(); err != nil {
			return err
		}
		from := task.Status(t.Status)
		if err := action.validate(from); err != nil {
			return err
		}

		records, err := tx.Guardrails().ListForScopes(ctx, actor.WorkspaceID, guardrailScopes(bundle), true)
		if err != nil {
			return err
		}
		decision = guardrail.Evaluate(toEvaluatorGuardrails(records), guardrail.Input{
			ViolatedIDs: req.ViolatedGuardrailIDs,
			ApprovedIDs: req.ApprovedGuardrailIDs,
		})

		now := s.deps.Clock.Now()
		runState = action.runOnAllow
		if decision.Blocked() {
			runState = run.StatusBlocked
		}

		runRecord, isNew, err := s.runFor(ctx, tx, actor, bundle, mode, req.Metadata, action)
		if err != nil {
			return err
		}
		runRecord.Status = string(runState)
		runRecord.UpdatedAt = now
		if runState == run.StatusCompleted {
			runRecord.CompletedAt = &now
		}
		if isNew {
			runRecord.StartedAt = now
			runRecord.CreatedAt = now
			if err := tx.Runs().Create(ctx, runRecord); err != nil {
				return err
			}
		} else if err := tx.Runs().Update(ctx, runRecord); err != nil {
			return err
		}

		eventType := action.eventType
		if decision.Blocked() {
			eventType = guardrailEventType(decision.Decision)
		} else if from != action.taskTarget {
			ts := task.ApplyTransition(from, action.taskTarget, task.Timestamps{
				StartedAt:   t.StartedAt,
				CompletedAt: t.CompletedAt,
			}, now)
			t.Status = string(action.taskTarget)
			t.StartedAt = ts.StartedAt
			t.CompletedAt = ts.CompletedAt
			t.UpdatedAt = now
			if err := tx.Tasks().Update(ctx, t); err != nil {
				return err
			}
		}

		event := &secondary.EventRecord{
			ID:          s.deps.IDs.NewID(prefixEvent),
			WorkspaceID: actor.WorkspaceID,
			RunID:       runRecord.ID,
			Type:        eventType,
			ActorType:   actorTypeUser,
			ActorID:     actor.UserID,
			Payload: map[string]any{
				"taskId":            t.ID,
				"runStatus":         string(runState),
				"taskStatus":        t.Status,
				"mode":              string(mode),
				"guardrailDecision": string(decision.Decision),
				"guardrails":        matchesPayload(decision.Matches),
			},
			CreatedAt: now,
		}
		if err := tx.Events().Append(ctx, event); err != nil {
			return err
		}

		result = &primary.ExecutionResult{
			RunID:             runRecord.ID,
			Blocked:           decision.Blocked(),
			RunStatus:         string(runState),
			Task:              recordToTask(t),
			GuardrailDecision: string(decision.Decision),
			Guardrails:        toMatches(decision.Matches),
			Event:             recordToEvent(event),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("workhub.action", action.name),
		attribute.String("workhub.guardrail.decision", string(decision.Decision)),
	))
	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("workhub.run.status", string(runState))))

	s.deps.logger().DebugContext(ctx, "task execution recorded",
		"action", action.name,
		"task", req.TaskID,
		"run", result.RunID,
		"decision", result.GuardrailDecision)
	return result, nil
}

// runFor returns the run an action writes to. Start always opens a new run;
// complete reuses the task's latest run unless that run is already terminal,
// in which case the completion is recorded on a new run.
func (s *ExecutionServiceImpl) runFor(ctx context.Context, tx secondary.Transaction, actor primary.Actor, bundle *secondary.TaskBundle, mode run.Mode, metadata map[string]any, action executeAction) (*secondary.RunRecord, bool, error) {
	if action.taskTarget == task.StatusDone {
		latest, err := tx.Runs().LatestForTask(ctx, actor.WorkspaceID, bundle.Task.ID)
		if err != nil {
			return nil, false, err
		}
		if latest != nil && !run.Status(latest.Status).IsTerminal() {
			if metadata != nil {
				latest.Metadata = metadata
			}
			return latest, false, nil
		}
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	planID := bundle.Todo.PlanID
	if bundle.Plan != nil {
		planID = bundle.Plan.ID
	}
	return &secondary.RunRecord{
		ID:          s.deps.IDs.NewID(prefixRun),
		WorkspaceID: actor.WorkspaceID,
		PlanID:      planID,
		TodoID:      bundle.Todo.ID,
		TaskID:      bundle.Task.ID,
		Mode:        string(mode),
		StartedBy:   actor.UserID,
		Metadata:    metadata,
	}, true, nil
}

// SteerRun appends a steer event. Run and task status are left unchanged.
func (s *ExecutionServiceImpl) SteerRun(ctx context.Context, actor primary.Actor, req primary.SteerRunRequest) (*primary.SteerResult, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperr.Validation("steer message is required")
	}

	var result *primary.SteerResult
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		r, err := s.loadRunForUpdate(ctx, tx, actor, req.RunID)
		if err != nil {
			return err
		}
		if err := run.CanSteer(run.StatusContext{RunID: r.ID, Status: run.Status(r.Status)}).Error(); err != nil {
			return err
		}

		payload := map[string]any{
			"message":   message,
			"runStatus": r.Status,
		}
		if len(req.Metadata) > 0 {
			payload["metadata"] = req.Metadata
		}
		event, err := s.appendEvent(ctx, tx, actor, r.ID, EventSteer, payload)
		if err != nil {
			return err
		}
		result = &primary.SteerResult{Run: recordToRun(r), Event: recordToEvent(event)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PauseRun moves an in_progress run to paused.
func (s *ExecutionServiceImpl) PauseRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	return s.changeRunStatus(ctx, actor, runID, run.StatusPaused, EventRunPaused, run.CanPause, nil)
}

// ResumeRun moves a paused or blocked run back to in_progress. The task is not touched.
func (s *ExecutionServiceImpl) ResumeRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	return s.changeRunStatus(ctx, actor, runID, run.StatusInProgress, EventRunResumed, run.CanResume, nil)
}

// CancelRun moves a non-terminal run to cancelled.
func (s *ExecutionServiceImpl) CancelRun(ctx context.Context, actor primary.Actor, runID, reason string) (*primary.Run, error) {
	extra := map[string]any{}
	if reason = strings.TrimSpace(reason); reason != "" {
		extra["reason"] = reason
	}
	return s.changeRunStatus(ctx, actor, runID, run.StatusCancelled, EventRunCancelled, run.CanCancel, extra)
}

func (s *ExecutionServiceImpl) changeRunStatus(
	ctx context.Context,
	actor primary.Actor,
	runID string,
	to run.Status,
	eventType string,
	guard func(run.StatusContext) run.GuardResult,
	extra map[string]any,
) (*primary.Run, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var result *secondary.RunRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		r, err := s.loadRunForUpdate(ctx, tx, actor, runID)
		if err != nil {
			return err
		}
		from := r.Status
		if err := guard(run.StatusContext{RunID: r.ID, Status: run.Status(from)}).Error(); err != nil {
			return err
		}

		now := s.deps.Clock.Now()
		r.Status = string(to)
		r.UpdatedAt = now
		if to.IsTerminal() {
			r.CompletedAt = &now
		}
		if err := tx.Runs().Update(ctx, r); err != nil {
			return err
		}

		payload := map[string]any{
			"taskId":     r.TaskID,
			"fromStatus": from,
			"runStatus":  string(to),
		}
		for k, v := range extra {
			payload[k] = v
		}
		if _, err := s.appendEvent(ctx, tx, actor, r.ID, eventType, payload); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("workhub.run.status", string(to))))
	return recordToRun(result), nil
}

// loadRunForUpdate loads a run and checks the actor may update its task.
func (s *ExecutionServiceImpl) loadRunForUpdate(ctx context.Context, tx secondary.Transaction, actor primary.Actor, runID string) (*secondary.RunRecord, error) {
	r, err := tx.Runs().GetByID(ctx, actor.WorkspaceID, runID)
	if err != nil {
		return nil, err
	}
	bundle, err := tx.Tasks().GetBundle(ctx, actor.WorkspaceID, r.TaskID)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(permission.ActionTaskUpdate, taskFacts(actor, bundle.Todo, bundle.Task)).Error(); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ExecutionServiceImpl) appendEvent(ctx context.Context, tx secondary.Transaction, actor primary.Actor, runID, eventType string, payload map[string]any) (*secondary.EventRecord, error) {
	event := &secondary.EventRecord{
		ID:          s.deps.IDs.NewID(prefixEvent),
		WorkspaceID: actor.WorkspaceID,
		RunID:       runID,
		Type:        eventType,
		ActorType:   actorTypeUser,
		ActorID:     actor.UserID,
		Payload:     payload,
		CreatedAt:   s.deps.Clock.Now(),
	}
	if err := tx.Events().Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetRun retrieves a run by ID.
func (s *ExecutionServiceImpl) GetRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	r, err := s.deps.Store.Runs().GetByID(ctx, actor.WorkspaceID, runID)
	if err != nil {
		return nil, err
	}
	return recordToRun(r), nil
}

// ListRuns lists the runs of a task, most recent first.
func (s *ExecutionServiceImpl) ListRuns(ctx context.Context, actor primary.Actor, taskID string) ([]*primary.Run, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.deps.Store.Tasks().GetByID(ctx, actor.WorkspaceID, taskID); err != nil {
		return nil, err
	}
	records, err := s.deps.Store.Runs().ListByTask(ctx, actor.WorkspaceID, taskID)
	if err != nil {
		return nil, err
	}
	runs := make([]*primary.Run, len(records))
	for i, r := range records {
		runs[i] = recordToRun(r)
	}
	return runs, nil
}

// ListEvents returns a run's events in sequence order.
func (s *ExecutionServiceImpl) ListEvents(ctx context.Context, actor primary.Actor, filters primary.EventFilters) ([]*primary.Event, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if filters.AfterSequence < 0 {
		return nil, apperr.Validation("after sequence cannot be negative")
	}
	if _, err := s.deps.Store.Runs().GetByID(ctx, actor.WorkspaceID, filters.RunID); err != nil {
		return nil, err
	}
	records, err := s.deps.Store.Events().ListByRun(ctx, actor.WorkspaceID, filters.RunID, filters.AfterSequence)
	if err != nil {
		return nil, err
	}
	events := make([]*primary.Event, len(records))
	for i, r := range records {
		events[i] = recordToEvent(r)
	}
	return events, nil
}

func guardrailScopes(b *secondary.TaskBundle) []secondary.GuardrailScope {
	scopes := []secondary.GuardrailScope{
		{EntityType: string(guardrail.EntityTask), EntityID: b.Task.ID},
		{EntityType: string(guardrail.EntityTodo), EntityID: b.Todo.ID},
	}
	if b.Plan != nil {
		scopes = append(scopes, secondary.GuardrailScope{EntityType: string(guardrail.EntityPlan), EntityID: b.Plan.ID})
	}
	return scopes
}

func guardrailEventType(d guardrail.Decision) string {
	if d == guardrail.DecisionNeedsApproval {
		return EventGuardrailNeedsApproval
	}
	return EventGuardrailBlocked
}

func matchesPayload(matches []guardrail.Match) []any {
	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = map[string]any{
			"id":       m.ID,
			"category": string(m.Category),
			"decision": string(m.Decision),
		}
	}
	return out
}

func toMatches(matches []guardrail.Match) []primary.GuardrailMatch {
	out := make([]primary.GuardrailMatch, len(matches))
	for i, m := range matches {
		out[i] = primary.GuardrailMatch{
			ID:         m.ID,
			Name:       m.Name,
			EntityType: string(m.EntityType),
			EntityID:   m.EntityID,
			Category:   string(m.Category),
			Decision:   string(m.Decision),
		}
	}
	return out
}

// Ensure ExecutionServiceImpl implements the interface
var _ primary.ExecutionService = (*ExecutionServiceImpl)(nil)
