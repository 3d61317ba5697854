// Package app implements the primary ports on top of the secondary ports.
package app

import (
	"log/slog"
	"reflect"

	"github.com/example/workhub/internal/core/permission"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

// Deps are the collaborators every service is built from.
type Deps struct {
	Store  secondary.Store
	Clock  secondary.Clock
	IDs    secondary.IDGenerator
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// ID prefixes for generated identifiers.
const (
	prefixPlan      = "PLAN"
	prefixTodo      = "TODO"
	prefixTask      = "TASK"
	prefixRun       = "RUN"
	prefixEvent     = "EVT"
	prefixGuardrail = "GRD"
	prefixConfig    = "CFG"
)

// todoFacts builds permission facts for an action on a todo.
func todoFacts(actor primary.Actor, todo *secondary.TodoRecord) permission.Facts {
	return permission.Facts{
		ActorUserID:       actor.UserID,
		TodoCreatorUserID: todo.CreatedBy,
		TodoOwnerUserID:   todo.OwnerID,
		IsAdmin:           actor.IsAdmin(),
	}
}

// taskFacts builds permission facts for an action on a task inside its todo.
func taskFacts(actor primary.Actor, todo *secondary.TodoRecord, t *secondary.TaskRecord) permission.Facts {
	f := todoFacts(actor, todo)
	f.TaskAssigneeUserID = t.AssigneeID
	return f
}

// planFacts treats a plan's creator/owner like a todo's for edit rights.
func planFacts(actor primary.Actor, plan *secondary.PlanRecord) permission.Facts {
	return permission.Facts{
		ActorUserID:       actor.UserID,
		TodoCreatorUserID: plan.CreatedBy,
		TodoOwnerUserID:   plan.OwnerID,
		IsAdmin:           actor.IsAdmin(),
	}
}

// sameMap compares two metadata bags, treating nil and empty as equal.
func sameMap(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ============================================================================
// Record → port conversions
// ============================================================================

func recordToPlan(r *secondary.PlanRecord, status string, taskCount int) *primary.Plan {
	return &primary.Plan{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		Title:       r.Title,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		OwnerID:     r.OwnerID,
		Metadata:    r.Metadata,
		Status:      status,
		TaskCount:   taskCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func recordToTodo(r *secondary.TodoRecord, status string) *primary.Todo {
	return &primary.Todo{
		ID:           r.ID,
		WorkspaceID:  r.WorkspaceID,
		PlanID:       r.PlanID,
		ParentTodoID: r.ParentTodoID,
		Title:        r.Title,
		Description:  r.Description,
		Position:     r.Position,
		CreatedBy:    r.CreatedBy,
		OwnerID:      r.OwnerID,
		Metadata:     r.Metadata,
		ClosedAt:     r.ClosedAt,
		Status:       status,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func recordToTask(r *secondary.TaskRecord) *primary.Task {
	return &primary.Task{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		TodoID:      r.TodoID,
		Title:       r.Title,
		Description: r.Description,
		Position:    r.Position,
		Status:      r.Status,
		CreatedBy:   r.CreatedBy,
		AssigneeID:  r.AssigneeID,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func recordToRun(r *secondary.RunRecord) *primary.Run {
	return &primary.Run{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		PlanID:      r.PlanID,
		TodoID:      r.TodoID,
		TaskID:      r.TaskID,
		Mode:        r.Mode,
		Status:      r.Status,
		StartedBy:   r.StartedBy,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func recordToEvent(r *secondary.EventRecord) *primary.Event {
	return &primary.Event{
		ID:        r.ID,
		RunID:     r.RunID,
		Type:      r.Type,
		ActorType: r.ActorType,
		ActorID:   r.ActorID,
		Payload:   r.Payload,
		Sequence:  r.Sequence,
		CreatedAt: r.CreatedAt,
	}
}

func recordToGuardrail(r *secondary.GuardrailRecord) *primary.Guardrail {
	return &primary.Guardrail{
		ID:         r.ID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Name:       r.Name,
		Category:   r.Category,
		Active:     r.Active,
		Config:     r.Config,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func recordToAgentConfig(r *secondary.AgentConfigRecord) *primary.AgentConfig {
	return &primary.AgentConfig{
		ID:            r.ID,
		Kind:          r.Kind,
		Name:          r.Name,
		Version:       r.Version,
		Content:       r.Content,
		ParentID:      r.ParentID,
		LineageRootID: r.LineageRootID,
		Detached:      r.Detached,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
