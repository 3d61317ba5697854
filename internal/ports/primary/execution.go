package primary

import (
	"context"
	"time"
)

// ExecutionService defines the primary port for the execution run lifecycle.
// Every mutating call validates before writing and then performs exactly one
// atomic write plus event append.
type ExecutionService interface {
	// StartTask opens a run for the task and moves it to in_progress unless a guardrail blocks.
	StartTask(ctx context.Context, actor Actor, req ExecuteTaskRequest) (*ExecutionResult, error)

	// CompleteTask closes the task's latest run and moves the task to done unless a guardrail blocks.
	CompleteTask(ctx context.Context, actor Actor, req ExecuteTaskRequest) (*ExecutionResult, error)

	// SteerRun records a side-channel instruction for whatever executes the run.
	SteerRun(ctx context.Context, actor Actor, req SteerRunRequest) (*SteerResult, error)

	// PauseRun pauses an in_progress run.
	PauseRun(ctx context.Context, actor Actor, runID string) (*Run, error)

	// ResumeRun resumes a paused or blocked run.
	ResumeRun(ctx context.Context, actor Actor, runID string) (*Run, error)

	// CancelRun cancels a non-terminal run.
	CancelRun(ctx context.Context, actor Actor, runID, reason string) (*Run, error)

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, actor Actor, runID string) (*Run, error)

	// ListRuns lists the runs of a task, most recent first.
	ListRuns(ctx context.Context, actor Actor, taskID string) ([]*Run, error)

	// ListEvents returns a run's events ordered by sequence ascending.
	ListEvents(ctx context.Context, actor Actor, filters EventFilters) ([]*Event, error)
}

// ExecuteTaskRequest contains parameters for starting or completing a task.
type ExecuteTaskRequest struct {
	TaskID               string
	Mode                 string // manual (default), sub_agentic, full_auto
	Metadata             map[string]any
	ViolatedGuardrailIDs []string
	ApprovedGuardrailIDs []string
}

// ExecutionResult is the outcome of a guardrail-gated start or complete.
type ExecutionResult struct {
	RunID             string
	Blocked           bool
	RunStatus         string
	Task              *Task
	GuardrailDecision string
	Guardrails        []GuardrailMatch
	Event             *Event
}

// GuardrailMatch reports how one guardrail classified.
type GuardrailMatch struct {
	ID         string
	Name       string
	EntityType string
	EntityID   string
	Category   string
	Decision   string
}

// SteerRunRequest contains parameters for steering a run.
type SteerRunRequest struct {
	RunID    string
	Message  string
	Metadata map[string]any
}

// SteerResult is the outcome of steering a run.
type SteerResult struct {
	Run   *Run
	Event *Event
}

// EventFilters selects events of one run.
type EventFilters struct {
	RunID         string
	AfterSequence int64
}

// Run represents an execution run at the port boundary.
type Run struct {
	ID          string
	WorkspaceID string
	PlanID      string
	TodoID      string
	TaskID      string
	Mode        string
	Status      string
	StartedBy   string
	StartedAt   time.Time
	CompletedAt *time.Time
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event represents an execution event at the port boundary.
type Event struct {
	ID        string
	RunID     string
	Type      string
	ActorType string
	ActorID   string
	Payload   map[string]any
	Sequence  int64
	CreatedAt time.Time
}
