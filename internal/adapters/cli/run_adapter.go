package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/example/workhub/internal/ports/primary"
)

// RunAdapter is a thin adapter that translates CLI operations to ExecutionService calls.
type RunAdapter struct {
	service primary.ExecutionService
	actor   primary.Actor
	out     io.Writer
}

// NewRunAdapter creates a new RunAdapter acting as actor.
func NewRunAdapter(service primary.ExecutionService, actor primary.Actor, out io.Writer) *RunAdapter {
	return &RunAdapter{service: service, actor: actor, out: out}
}

// Start starts a task and reports the guardrail outcome.
func (a *RunAdapter) Start(ctx context.Context, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	res, err := a.service.StartTask(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	a.writeResult("started", res)
	return res, nil
}

// Complete completes a task and reports the guardrail outcome.
func (a *RunAdapter) Complete(ctx context.Context, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	res, err := a.service.CompleteTask(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	a.writeResult("completed", res)
	return res, nil
}

func (a *RunAdapter) writeResult(verb string, res *primary.ExecutionResult) {
	if res.Blocked {
		fmt.Fprintf(a.out, "%s Task %s not %s: guardrails returned %s (run %s is %s)\n",
			red.Sprint("✗"), res.Task.ID, verb, colorDecision(res.GuardrailDecision), res.RunID, colorStatus(res.RunStatus))
	} else {
		fmt.Fprintf(a.out, "✓ Task %s %s (run %s, task %s)\n", res.Task.ID, verb, res.RunID, colorStatus(res.Task.Status))
	}
	for _, g := range res.Guardrails {
		fmt.Fprintf(a.out, "  %-8s %-9s %s/%s %s\n", colorDecision(g.Decision), g.Category, g.EntityType, g.EntityID, g.Name)
	}
}

// Steer sends an instruction to a run.
func (a *RunAdapter) Steer(ctx context.Context, req primary.SteerRunRequest) error {
	res, err := a.service.SteerRun(ctx, a.actor, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Steered run %s (event #%d)\n", res.Run.ID, res.Event.Sequence)
	return nil
}

// Pause pauses a run.
func (a *RunAdapter) Pause(ctx context.Context, runID string) error {
	run, err := a.service.PauseRun(ctx, a.actor, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Run %s %s\n", run.ID, colorStatus(run.Status))
	return nil
}

// Resume resumes a paused or blocked run.
func (a *RunAdapter) Resume(ctx context.Context, runID string) error {
	run, err := a.service.ResumeRun(ctx, a.actor, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Run %s %s\n", run.ID, colorStatus(run.Status))
	return nil
}

// Cancel cancels a run.
func (a *RunAdapter) Cancel(ctx context.Context, runID, reason string) error {
	run, err := a.service.CancelRun(ctx, a.actor, runID, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Run %s %s\n", run.ID, colorStatus(run.Status))
	return nil
}

// Show displays a single run.
func (a *RunAdapter) Show(ctx context.Context, runID string) (*primary.Run, error) {
	run, err := a.service.GetRun(ctx, a.actor, runID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "\nRun:       %s\n", run.ID)
	fmt.Fprintf(a.out, "Task:      %s\n", run.TaskID)
	fmt.Fprintf(a.out, "Status:    %s\n", colorStatus(run.Status))
	fmt.Fprintf(a.out, "Mode:      %s\n", run.Mode)
	fmt.Fprintf(a.out, "Started:   %s by %s\n", formatTime(run.StartedAt), run.StartedBy)
	fmt.Fprintf(a.out, "Completed: %s\n", formatTimePtr(run.CompletedAt))
	writeMap(a.out, "Metadata", run.Metadata)
	fmt.Fprintln(a.out)
	return run, nil
}

// List lists the runs of a task.
func (a *RunAdapter) List(ctx context.Context, taskID string) error {
	runs, err := a.service.ListRuns(ctx, a.actor, taskID)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-41s %-12s %-12s %s\n", "ID", "STATUS", "MODE", "STARTED")
	fmt.Fprintln(a.out, rule)
	for _, r := range runs {
		fmt.Fprintf(a.out, "%-41s %-12s %-12s %s\n", r.ID, colorStatus(r.Status), r.Mode, formatTime(r.StartedAt))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Events prints a run's event log in sequence order. With asJSON each event is
// written as one JSON object per line for downstream replay.
func (a *RunAdapter) Events(ctx context.Context, filters primary.EventFilters, asJSON bool) error {
	events, err := a.service.ListEvents(ctx, a.actor, filters)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(a.out)
		for _, e := range events {
			if err := enc.Encode(eventJSON{
				Sequence:  e.Sequence,
				Type:      e.Type,
				ActorType: e.ActorType,
				ActorID:   e.ActorID,
				Payload:   e.Payload,
				CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events found")
		return nil
	}
	for _, e := range events {
		fmt.Fprintf(a.out, "#%-4d %s %-26s %s:%s\n", e.Sequence, formatTime(e.CreatedAt), magenta.Sprint(e.Type), e.ActorType, e.ActorID)
		if msg, ok := e.Payload["message"].(string); ok {
			fmt.Fprintf(a.out, "      %q\n", msg)
		}
	}
	return nil
}

type eventJSON struct {
	Sequence  int64          `json:"sequence"`
	Type      string         `json:"type"`
	ActorType string         `json:"actorType"`
	ActorID   string         `json:"actorId"`
	Payload   map[string]any `json:"payload"`
	CreatedAt string         `json:"createdAt"`
}
