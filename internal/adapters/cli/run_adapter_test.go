package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/workhub/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

var testActor = primary.Actor{UserID: "alice", Role: primary.RoleMember, WorkspaceID: "ws-1"}

// mockExecutionService implements primary.ExecutionService for testing
type mockExecutionService struct {
	startTaskFn  func(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error)
	listEventsFn func(ctx context.Context, actor primary.Actor, filters primary.EventFilters) ([]*primary.Event, error)
	pauseRunFn   func(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error)

	// Track calls for verification
	lastActor    primary.Actor
	lastStartReq primary.ExecuteTaskRequest
	lastSteerReq primary.SteerRunRequest
}

func (m *mockExecutionService) StartTask(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	m.lastActor = actor
	m.lastStartReq = req
	if m.startTaskFn != nil {
		return m.startTaskFn(ctx, actor, req)
	}
	return &primary.ExecutionResult{
		RunID:             "RUN-1",
		RunStatus:         "in_progress",
		GuardrailDecision: "allow",
		Task:              &primary.Task{ID: req.TaskID, Status: "in_progress"},
	}, nil
}

func (m *mockExecutionService) CompleteTask(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	return &primary.ExecutionResult{
		RunID:             "RUN-1",
		RunStatus:         "completed",
		GuardrailDecision: "allow",
		Task:              &primary.Task{ID: req.TaskID, Status: "done"},
	}, nil
}

func (m *mockExecutionService) SteerRun(ctx context.Context, actor primary.Actor, req primary.SteerRunRequest) (*primary.SteerResult, error) {
	m.lastSteerReq = req
	return &primary.SteerResult{
		Run:   &primary.Run{ID: req.RunID, Status: "in_progress"},
		Event: &primary.Event{RunID: req.RunID, Type: "steer", Sequence: 4},
	}, nil
}

func (m *mockExecutionService) PauseRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	if m.pauseRunFn != nil {
		return m.pauseRunFn(ctx, actor, runID)
	}
	return &primary.Run{ID: runID, Status: "paused"}, nil
}

func (m *mockExecutionService) ResumeRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	return &primary.Run{ID: runID, Status: "in_progress"}, nil
}

func (m *mockExecutionService) CancelRun(ctx context.Context, actor primary.Actor, runID, reason string) (*primary.Run, error) {
	return &primary.Run{ID: runID, Status: "cancelled"}, nil
}

func (m *mockExecutionService) GetRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	return &primary.Run{ID: runID, TaskID: "TASK-1", Status: "paused", Mode: "manual", StartedBy: "alice"}, nil
}

func (m *mockExecutionService) ListRuns(ctx context.Context, actor primary.Actor, taskID string) ([]*primary.Run, error) {
	return []*primary.Run{}, nil
}

func (m *mockExecutionService) ListEvents(ctx context.Context, actor primary.Actor, filters primary.EventFilters) ([]*primary.Event, error) {
	if m.listEventsFn != nil {
		return m.listEventsFn(ctx, actor, filters)
	}
	return []*primary.Event{}, nil
}

func TestRunAdapter_Start(t *testing.T) {
	mock := &mockExecutionService{}
	var buf bytes.Buffer
	adapter := NewRunAdapter(mock, testActor, &buf)

	_, err := adapter.Start(context.Background(), primary.ExecuteTaskRequest{TaskID: "TASK-1", Mode: "full_auto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.lastActor != testActor {
		t.Errorf("expected actor to be forwarded, got %+v", mock.lastActor)
	}
	if mock.lastStartReq.Mode != "full_auto" {
		t.Errorf("expected mode 'full_auto', got %q", mock.lastStartReq.Mode)
	}
	output := buf.String()
	if !strings.Contains(output, "✓ Task TASK-1 started (run RUN-1, task in_progress)") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestRunAdapter_StartBlocked(t *testing.T) {
	mock := &mockExecutionService{
		startTaskFn: func(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
			return &primary.ExecutionResult{
				RunID:             "RUN-2",
				Blocked:           true,
				RunStatus:         "blocked",
				GuardrailDecision: "block",
				Task:              &primary.Task{ID: req.TaskID, Status: "todo"},
				Guardrails: []primary.GuardrailMatch{
					{ID: "GRD-1", Name: "no prod", EntityType: "task", EntityID: req.TaskID, Category: "safety", Decision: "block"},
				},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewRunAdapter(mock, testActor, &buf)

	res, err := adapter.Start(context.Background(), primary.ExecuteTaskRequest{TaskID: "TASK-1"})
	if err != nil {
		t.Fatalf("a blocked start is not an error: %v", err)
	}
	if !res.Blocked {
		t.Error("expected blocked result to be returned")
	}

	output := buf.String()
	if !strings.Contains(output, "✗ Task TASK-1 not started: guardrails returned block") {
		t.Errorf("expected blocked message, got: %s", output)
	}
	if !strings.Contains(output, "safety") || !strings.Contains(output, "no prod") {
		t.Errorf("expected guardrail line, got: %s", output)
	}
}

func TestRunAdapter_PauseError(t *testing.T) {
	mock := &mockExecutionService{
		pauseRunFn: func(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
			return nil, errors.New("can only pause in_progress runs")
		},
	}
	var buf bytes.Buffer
	adapter := NewRunAdapter(mock, testActor, &buf)

	err := adapter.Pause(context.Background(), "RUN-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on error, got: %s", buf.String())
	}
}

func TestRunAdapter_Steer(t *testing.T) {
	mock := &mockExecutionService{}
	var buf bytes.Buffer
	adapter := NewRunAdapter(mock, testActor, &buf)

	err := adapter.Steer(context.Background(), primary.SteerRunRequest{RunID: "RUN-1", Message: "use the staging db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastSteerReq.Message != "use the staging db" {
		t.Errorf("message not forwarded: %+v", mock.lastSteerReq)
	}
	if !strings.Contains(buf.String(), "event #4") {
		t.Errorf("expected sequence in output, got: %s", buf.String())
	}
}

func TestRunAdapter_EventsJSON(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	mock := &mockExecutionService{
		listEventsFn: func(ctx context.Context, actor primary.Actor, filters primary.EventFilters) ([]*primary.Event, error) {
			if filters.AfterSequence != 1 {
				t.Errorf("expected after-sequence 1, got %d", filters.AfterSequence)
			}
			return []*primary.Event{
				{RunID: filters.RunID, Type: "run_paused", ActorType: "user", ActorID: "alice", Sequence: 2, CreatedAt: created, Payload: map[string]any{"runStatus": "paused"}},
				{RunID: filters.RunID, Type: "steer", ActorType: "user", ActorID: "alice", Sequence: 3, CreatedAt: created, Payload: map[string]any{"message": "hi"}},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewRunAdapter(mock, testActor, &buf)

	if err := adapter.Events(context.Background(), primary.EventFilters{RunID: "RUN-1", AfterSequence: 1}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %s", len(lines), buf.String())
	}
	var first eventJSON
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if first.Sequence != 2 || first.Type != "run_paused" || first.CreatedAt != "2026-03-14T09:30:00Z" {
		t.Errorf("unexpected first event: %+v", first)
	}
}

func TestRunAdapter_EventsEmpty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewRunAdapter(&mockExecutionService{}, testActor, &buf)

	if err := adapter.Events(context.Background(), primary.EventFilters{RunID: "RUN-1"}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No events found") {
		t.Errorf("expected empty message, got: %s", buf.String())
	}
}
