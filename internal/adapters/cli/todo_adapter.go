package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/workhub/internal/ports/primary"
)

// TodoAdapter is a thin adapter that translates CLI operations to TodoService calls.
type TodoAdapter struct {
	service primary.TodoService
	actor   primary.Actor
	out     io.Writer
}

// NewTodoAdapter creates a new TodoAdapter acting as actor.
func NewTodoAdapter(service primary.TodoService, actor primary.Actor, out io.Writer) *TodoAdapter {
	return &TodoAdapter{service: service, actor: actor, out: out}
}

// Create creates a new todo.
func (a *TodoAdapter) Create(ctx context.Context, req primary.CreateTodoRequest) (*primary.Todo, error) {
	todo, err := a.service.CreateTodo(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created todo %s: %s\n", todo.ID, todo.Title)
	return todo, nil
}

// List lists todos with their derived status.
func (a *TodoAdapter) List(ctx context.Context, filters primary.TodoFilters) error {
	todos, err := a.service.ListTodos(ctx, a.actor, filters)
	if err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}
	if len(todos) == 0 {
		fmt.Fprintln(a.out, "No todos found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-4s %-41s %-12s %-10s %s\n", "POS", "ID", "STATUS", "OWNER", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, t := range todos {
		title := t.Title
		if t.ClosedAt != nil {
			title += faint.Sprint(" (closed)")
		}
		fmt.Fprintf(a.out, "%-4d %-41s %-12s %-10s %s\n", t.Position, t.ID, colorStatus(t.Status), truncate(orDash(t.OwnerID), 10), title)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays a single todo.
func (a *TodoAdapter) Show(ctx context.Context, todoID string) (*primary.Todo, error) {
	todo, err := a.service.GetTodo(ctx, a.actor, todoID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nTodo:    %s\n", todo.ID)
	fmt.Fprintf(a.out, "Title:   %s\n", todo.Title)
	fmt.Fprintf(a.out, "Status:  %s\n", colorStatus(todo.Status))
	fmt.Fprintf(a.out, "Plan:    %s\n", orDash(todo.PlanID))
	if todo.ParentTodoID != "" {
		fmt.Fprintf(a.out, "Parent:  %s\n", todo.ParentTodoID)
	}
	fmt.Fprintf(a.out, "Owner:   %s\n", orDash(todo.OwnerID))
	if todo.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", todo.Description)
	}
	if todo.ClosedAt != nil {
		fmt.Fprintf(a.out, "Closed:  %s\n", formatTimePtr(todo.ClosedAt))
	}
	writeMap(a.out, "Metadata", todo.Metadata)
	fmt.Fprintln(a.out)
	return todo, nil
}

// Update patches a todo.
func (a *TodoAdapter) Update(ctx context.Context, req primary.PatchTodoRequest) error {
	todo, err := a.service.PatchTodo(ctx, a.actor, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Todo %s updated\n", todo.ID)
	return nil
}

// Assign moves ownership of a todo.
func (a *TodoAdapter) Assign(ctx context.Context, todoID, ownerID string) error {
	todo, err := a.service.AssignTodo(ctx, a.actor, todoID, ownerID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Todo %s now owned by %s\n", todo.ID, todo.OwnerID)
	return nil
}
