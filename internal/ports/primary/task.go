package primary

import (
	"context"
	"time"
)

// TaskService defines the primary port for task operations.
type TaskService interface {
	// CreateTask creates a task under a todo.
	CreateTask(ctx context.Context, actor Actor, req CreateTaskRequest) (*Task, error)

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, actor Actor, taskID string) (*Task, error)

	// ListTasks lists tasks with optional filters.
	ListTasks(ctx context.Context, actor Actor, filters TaskFilters) ([]*Task, error)

	// PatchTask updates fields of a task; a status change goes through the state machine.
	PatchTask(ctx context.Context, actor Actor, req PatchTaskRequest) (*Task, error)

	// AssignTask sets (or clears, with an empty id) the task assignee.
	AssignTask(ctx context.Context, actor Actor, taskID, assigneeID string) (*Task, error)
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	TodoID      string
	Title       string
	Description string
	AssigneeID  string // Optional
	Position    *int   // Optional, defaults to after the last task of the todo
	Metadata    map[string]any
}

// PatchTaskRequest contains parameters for patching a task. Nil fields are left unchanged.
type PatchTaskRequest struct {
	TaskID      string
	Title       *string
	Description *string
	Position    *int
	Status      *string
	Metadata    map[string]any
}

// TaskFilters contains filter options for listing tasks.
type TaskFilters struct {
	TodoID     string
	Status     string
	AssigneeID string
}

// Task represents a task entity at the port boundary.
type Task struct {
	ID          string
	WorkspaceID string
	TodoID      string
	Title       string
	Description string
	Position    int
	Status      string
	CreatedBy   string
	AssigneeID  string
	StartedAt   *time.Time
	CompletedAt *time.Time
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
