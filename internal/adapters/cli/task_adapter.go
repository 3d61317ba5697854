package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/workhub/internal/ports/primary"
)

// TaskAdapter is a thin adapter that translates CLI operations to TaskService calls.
type TaskAdapter struct {
	service primary.TaskService
	actor   primary.Actor
	out     io.Writer
}

// NewTaskAdapter creates a new TaskAdapter acting as actor.
func NewTaskAdapter(service primary.TaskService, actor primary.Actor, out io.Writer) *TaskAdapter {
	return &TaskAdapter{service: service, actor: actor, out: out}
}

// Create creates a new task.
func (a *TaskAdapter) Create(ctx context.Context, req primary.CreateTaskRequest) (*primary.Task, error) {
	task, err := a.service.CreateTask(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created task %s: %s\n", task.ID, task.Title)
	return task, nil
}

// List lists tasks.
func (a *TaskAdapter) List(ctx context.Context, filters primary.TaskFilters) error {
	tasks, err := a.service.ListTasks(ctx, a.actor, filters)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-4s %-41s %-12s %-10s %s\n", "POS", "ID", "STATUS", "ASSIGNEE", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, t := range tasks {
		fmt.Fprintf(a.out, "%-4d %-41s %-12s %-10s %s\n", t.Position, t.ID, colorStatus(t.Status), truncate(orDash(t.AssigneeID), 10), t.Title)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays a single task.
func (a *TaskAdapter) Show(ctx context.Context, taskID string) (*primary.Task, error) {
	task, err := a.service.GetTask(ctx, a.actor, taskID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nTask:      %s\n", task.ID)
	fmt.Fprintf(a.out, "Title:     %s\n", task.Title)
	fmt.Fprintf(a.out, "Status:    %s\n", colorStatus(task.Status))
	fmt.Fprintf(a.out, "Todo:      %s\n", task.TodoID)
	fmt.Fprintf(a.out, "Assignee:  %s\n", orDash(task.AssigneeID))
	if task.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", task.Description)
	}
	fmt.Fprintf(a.out, "Started:   %s\n", formatTimePtr(task.StartedAt))
	fmt.Fprintf(a.out, "Completed: %s\n", formatTimePtr(task.CompletedAt))
	writeMap(a.out, "Metadata", task.Metadata)
	fmt.Fprintln(a.out)
	return task, nil
}

// Update patches a task.
func (a *TaskAdapter) Update(ctx context.Context, req primary.PatchTaskRequest) error {
	task, err := a.service.PatchTask(ctx, a.actor, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Task %s updated (%s)\n", task.ID, colorStatus(task.Status))
	return nil
}

// Assign sets or clears the task's assignee.
func (a *TaskAdapter) Assign(ctx context.Context, taskID, assigneeID string) error {
	task, err := a.service.AssignTask(ctx, a.actor, taskID, assigneeID)
	if err != nil {
		return err
	}
	if task.AssigneeID == "" {
		fmt.Fprintf(a.out, "✓ Task %s unassigned\n", task.ID)
		return nil
	}
	fmt.Fprintf(a.out, "✓ Task %s assigned to %s\n", task.ID, task.AssigneeID)
	return nil
}
