// Package todo contains the pure guards for creating and patching todos.
package todo

import (
	"fmt"
	"strings"

	"github.com/example/workhub/internal/apperr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to a validation error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.Validation("%s", r.Reason)
}

// CreateContext provides context for todo creation guards.
// Existence of the plan and parent todo is checked by the caller; these
// guards only judge the shape of the request.
type CreateContext struct {
	Title        string
	Position     *int
	PlanID       string // optional
	ParentTodoID string // optional
	ParentPlanID string // plan of the parent todo, only set if ParentTodoID != ""
}

// PatchContext provides context for todo patch guards.
type PatchContext struct {
	TodoID        string
	FieldsPresent int
	Title         *string
	Position      *int
}

// CanCreate evaluates whether a todo can be created.
// Rules:
// - Title must not be blank
// - An explicit position must not be negative
// - A child todo must live in the same plan as its parent
func CanCreate(ctx CreateContext) GuardResult {
	if strings.TrimSpace(ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "todo title is required"}
	}
	if ctx.Position != nil && *ctx.Position < 0 {
		return GuardResult{Allowed: false, Reason: "todo position cannot be negative"}
	}
	if ctx.ParentTodoID != "" && ctx.PlanID != "" && ctx.PlanID != ctx.ParentPlanID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("todo plan %s does not match parent todo %s plan %q", ctx.PlanID, ctx.ParentTodoID, ctx.ParentPlanID),
		}
	}
	return GuardResult{Allowed: true}
}

// ResolvePlan returns the plan a new todo belongs to: the explicit plan,
// otherwise the parent's plan.
func ResolvePlan(ctx CreateContext) string {
	if ctx.PlanID != "" {
		return ctx.PlanID
	}
	return ctx.ParentPlanID
}

// CanPatch evaluates whether a todo patch request is well formed.
// Rules:
// - At least one field must be present
// - Title, when present, must not be blank
// - Position, when present, must not be negative
func CanPatch(ctx PatchContext) GuardResult {
	if ctx.FieldsPresent == 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("no fields to update for todo %s", ctx.TodoID)}
	}
	if ctx.Title != nil && strings.TrimSpace(*ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "todo title cannot be blank"}
	}
	if ctx.Position != nil && *ctx.Position < 0 {
		return GuardResult{Allowed: false, Reason: "todo position cannot be negative"}
	}
	return GuardResult{Allowed: true}
}
