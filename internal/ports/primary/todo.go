package primary

import (
	"context"
	"time"
)

// TodoService defines the primary port for todo operations.
type TodoService interface {
	// CreateTodo creates a todo inside an optional plan and/or parent todo.
	CreateTodo(ctx context.Context, actor Actor, req CreateTodoRequest) (*Todo, error)

	// GetTodo retrieves a todo with its derived status.
	GetTodo(ctx context.Context, actor Actor, todoID string) (*Todo, error)

	// ListTodos lists todos with optional filters.
	ListTodos(ctx context.Context, actor Actor, filters TodoFilters) ([]*Todo, error)

	// PatchTodo updates fields of a todo, including closing/reopening it.
	PatchTodo(ctx context.Context, actor Actor, req PatchTodoRequest) (*Todo, error)

	// AssignTodo moves ownership of a todo to another user.
	AssignTodo(ctx context.Context, actor Actor, todoID, ownerID string) (*Todo, error)
}

// CreateTodoRequest contains parameters for creating a todo.
type CreateTodoRequest struct {
	PlanID       string // Optional
	ParentTodoID string // Optional
	Title        string
	Description  string
	OwnerID      string // Optional, defaults to the actor
	Position     *int   // Optional, defaults to after the last sibling
	Metadata     map[string]any
}

// PatchTodoRequest contains parameters for patching a todo. Nil fields are left unchanged.
type PatchTodoRequest struct {
	TodoID      string
	Title       *string
	Description *string
	Position    *int
	Metadata    map[string]any
	Closed      *bool // true sets closed_at, false clears it
}

// TodoFilters contains filter options for listing todos.
type TodoFilters struct {
	PlanID       string
	ParentTodoID string
	RootsOnly    bool
	OwnerID      string
}

// Todo represents a todo entity at the port boundary.
type Todo struct {
	ID           string
	WorkspaceID  string
	PlanID       string
	ParentTodoID string
	Title        string
	Description  string
	Position     int
	CreatedBy    string
	OwnerID      string
	Metadata     map[string]any
	ClosedAt     *time.Time
	Status       string // derived from tasks under the todo and its descendants
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
