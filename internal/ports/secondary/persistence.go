// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
//
// Every repository method takes the workspace id explicitly; a row outside that
// workspace is reported exactly like a missing row.
package secondary

import (
	"context"
	"time"
)

// Store is the transactional relational store behind the work core.
//
// Reads may go straight through the Repositories accessors. Every mutation runs
// inside RunInTransaction: if fn returns an error (or panics) the transaction is
// rolled back, otherwise it is committed.
type Store interface {
	Repositories

	// RunInTransaction executes fn inside one storage transaction.
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Close releases the underlying connection pool.
	Close() error
}

// Repositories groups the per-entity repositories.
type Repositories interface {
	Plans() PlanRepository
	Todos() TodoRepository
	Tasks() TaskRepository
	Runs() RunRepository
	Events() EventRepository
	Guardrails() GuardrailRepository
	AgentConfigs() AgentConfigRepository
}

// Transaction exposes the repositories bound to one open transaction.
// Reads through a Transaction observe the transaction's own writes.
type Transaction interface {
	Repositories
}

// Clock abstracts the system clock so timestamps are deterministic in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// IDGenerator produces unique entity identifiers.
type IDGenerator interface {
	// NewID returns a fresh identifier carrying the given prefix (e.g. "TASK").
	NewID(prefix string) string
}

// ============================================================================
// Plans
// ============================================================================

// PlanRepository defines the secondary port for plan persistence.
type PlanRepository interface {
	// Create persists a new plan.
	Create(ctx context.Context, plan *PlanRecord) error

	// GetByID retrieves a plan by its ID within a workspace.
	GetByID(ctx context.Context, workspaceID, id string) (*PlanRecord, error)

	// List retrieves plans matching the given filters.
	List(ctx context.Context, filters PlanFilters) ([]*PlanRecord, error)

	// Update writes the mutable fields of an existing plan.
	Update(ctx context.Context, plan *PlanRecord) error
}

// PlanRecord represents a plan as stored in persistence.
type PlanRecord struct {
	ID          string
	WorkspaceID string
	Title       string
	Description string // Empty string means null
	CreatedBy   string
	OwnerID     string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlanFilters contains filter options for querying plans.
type PlanFilters struct {
	WorkspaceID string
	OwnerID     string
}

// ============================================================================
// Todos
// ============================================================================

// TodoRepository defines the secondary port for todo persistence.
type TodoRepository interface {
	// Create persists a new todo.
	Create(ctx context.Context, todo *TodoRecord) error

	// GetByID retrieves a todo by its ID within a workspace.
	GetByID(ctx context.Context, workspaceID, id string) (*TodoRecord, error)

	// List retrieves todos matching the given filters, ordered by position.
	List(ctx context.Context, filters TodoFilters) ([]*TodoRecord, error)

	// Update writes the mutable fields of an existing todo.
	Update(ctx context.Context, todo *TodoRecord) error

	// NextPosition returns the position after the last sibling under the given parent/plan.
	NextPosition(ctx context.Context, workspaceID, planID, parentTodoID string) (int, error)
}

// TodoRecord represents a todo as stored in persistence.
type TodoRecord struct {
	ID           string
	WorkspaceID  string
	PlanID       string // Empty string means null
	ParentTodoID string // Empty string means null
	Title        string
	Description  string
	Position     int
	CreatedBy    string
	OwnerID      string
	Metadata     map[string]any
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TodoFilters contains filter options for querying todos.
type TodoFilters struct {
	WorkspaceID  string
	PlanID       string
	ParentTodoID string
	RootsOnly    bool // only todos without a parent
	OwnerID      string
}

// ============================================================================
// Tasks
// ============================================================================

// TaskRepository defines the secondary port for task persistence.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its ID within a workspace.
	GetByID(ctx context.Context, workspaceID, id string) (*TaskRecord, error)

	// GetBundle retrieves a task with its todo and (optional) plan.
	GetBundle(ctx context.Context, workspaceID, id string) (*TaskBundle, error)

	// List retrieves tasks matching the given filters, ordered by position.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// Update writes the mutable fields of an existing task.
	Update(ctx context.Context, task *TaskRecord) error

	// NextPosition returns the position after the last task of the todo.
	NextPosition(ctx context.Context, workspaceID, todoID string) (int, error)

	// StatusesUnderTodo returns the status of every task under the todo and its descendants.
	StatusesUnderTodo(ctx context.Context, workspaceID, todoID string) ([]string, error)

	// StatusesUnderPlan returns the status of every task under any todo of the plan.
	StatusesUnderPlan(ctx context.Context, workspaceID, planID string) ([]string, error)
}

// TaskRecord represents a task as stored in persistence.
type TaskRecord struct {
	ID          string
	WorkspaceID string
	TodoID      string
	Title       string
	Description string
	Position    int
	Status      string
	CreatedBy   string
	AssigneeID  string // Empty string means null
	StartedAt   *time.Time
	CompletedAt *time.Time
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskBundle is a task loaded together with its parents.
type TaskBundle struct {
	Task *TaskRecord
	Todo *TodoRecord
	Plan *PlanRecord // nil when the todo has no plan
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	WorkspaceID string
	TodoID      string
	Status      string
	AssigneeID  string
}

// ============================================================================
// Execution runs and events
// ============================================================================

// RunRepository defines the secondary port for execution run persistence.
type RunRepository interface {
	// Create persists a new run.
	Create(ctx context.Context, run *RunRecord) error

	// GetByID retrieves a run by its ID within a workspace.
	GetByID(ctx context.Context, workspaceID, id string) (*RunRecord, error)

	// Update writes status, completed_at and metadata of an existing run.
	Update(ctx context.Context, run *RunRecord) error

	// LatestForTask returns the task's most recent run (started_at DESC, created_at DESC),
	// or nil if the task has never run.
	LatestForTask(ctx context.Context, workspaceID, taskID string) (*RunRecord, error)

	// ListByTask returns all runs of a task, most recent first.
	ListByTask(ctx context.Context, workspaceID, taskID string) ([]*RunRecord, error)
}

// RunRecord represents an execution run as stored in persistence.
type RunRecord struct {
	ID          string
	WorkspaceID string
	PlanID      string // Empty string means null
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

// EventRepository defines the secondary port for the append-only execution event log.
type EventRepository interface {
	// Append stores an event, assigning Sequence = 1 + current max for the run.
	// It must be called on a Transaction so the sequence is computed atomically
	// with the write it accompanies.
	Append(ctx context.Context, event *EventRecord) error

	// ListByRun returns the run's events with sequence > afterSequence, ascending.
	ListByRun(ctx context.Context, workspaceID, runID string, afterSequence int64) ([]*EventRecord, error)
}

// EventRecord represents an execution event as stored in persistence.
type EventRecord struct {
	ID          string
	WorkspaceID string
	RunID       string
	Type        string
	ActorType   string
	ActorID     string
	Payload     map[string]any
	Sequence    int64
	CreatedAt   time.Time
}

// ============================================================================
// Guardrails
// ============================================================================

// GuardrailRepository defines the secondary port for guardrail persistence.
type GuardrailRepository interface {
	// Create persists a new guardrail.
	Create(ctx context.Context, guardrail *GuardrailRecord) error

	// GetByID retrieves a guardrail by its ID within a workspace.
	GetByID(ctx context.Context, workspaceID, id string) (*GuardrailRecord, error)

	// ListForScopes returns guardrails attached to any of the given entities.
	ListForScopes(ctx context.Context, workspaceID string, scopes []GuardrailScope, activeOnly bool) ([]*GuardrailRecord, error)

	// SetActive toggles a guardrail.
	SetActive(ctx context.Context, workspaceID, id string, active bool, updatedAt time.Time) error
}

// GuardrailScope identifies an entity a guardrail can be attached to.
type GuardrailScope struct {
	EntityType string
	EntityID   string
}

// GuardrailRecord represents a guardrail as stored in persistence.
type GuardrailRecord struct {
	ID          string
	WorkspaceID string
	EntityType  string
	EntityID    string
	Name        string
	Category    string
	Active      bool
	Config      map[string]any
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ============================================================================
// Agent / workflow definitions
// ============================================================================

// AgentConfigRepository defines the secondary port for agent/workflow definitions.
type AgentConfigRepository interface {
	// Create persists a new definition.
	Create(ctx context.Context, cfg *AgentConfigRecord) error

	// GetByID retrieves a definition by its ID within a workspace.
	GetByID(ctx context.Context, workspaceID, id string) (*AgentConfigRecord, error)

	// Update writes name, content, version and detached flag.
	Update(ctx context.Context, cfg *AgentConfigRecord) error

	// List retrieves definitions, optionally filtered by kind.
	List(ctx context.Context, workspaceID, kind string) ([]*AgentConfigRecord, error)
}

// AgentConfigRecord represents an agent or workflow definition as stored in persistence.
type AgentConfigRecord struct {
	ID            string
	WorkspaceID   string
	Kind          string
	Name          string
	Version       int
	Content       map[string]any
	ParentID      string // Empty string means null
	LineageRootID string
	Detached      bool
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
