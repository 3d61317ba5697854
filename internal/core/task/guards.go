package task

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

// CreateContext provides context for task creation guards.
type CreateContext struct {
	Title    string
	Position *int
}

// PatchContext provides context for task patch guards.
type PatchContext struct {
	TaskID        string
	FieldsPresent int
	Title         *string
	Position      *int
}

// CanCreate evaluates whether a task can be created.
// Rules:
// - Title must not be blank
// - An explicit position must not be negative
func CanCreate(ctx CreateContext) GuardResult {
	if strings.TrimSpace(ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "task title is required"}
	}
	if ctx.Position != nil && *ctx.Position < 0 {
		return GuardResult{Allowed: false, Reason: "task position cannot be negative"}
	}
	return GuardResult{Allowed: true}
}

// CanPatch evaluates whether a task patch request is well formed.
// Rules:
// - At least one field must be present
// - Title, when present, must not be blank
// - Position, when present, must not be negative
func CanPatch(ctx PatchContext) GuardResult {
	if ctx.FieldsPresent == 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("no fields to update for task %s", ctx.TaskID)}
	}
	if ctx.Title != nil && strings.TrimSpace(*ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "task title cannot be blank"}
	}
	if ctx.Position != nil && *ctx.Position < 0 {
		return GuardResult{Allowed: false, Reason: "task position cannot be negative"}
	}
	return GuardResult{Allowed: true}
}

// ValidateCompletion checks that a task in from can be completed.
// A task that was never started may be completed directly: the completion
// passes through in_progress, so both hops must be legal. A done task cannot
// be completed again.
func ValidateCompletion(from Status) error {
	if from == StatusDone {
		return apperr.Conflict("task is already done")
	}
	if CanTransition(from, StatusDone) {
		return nil
	}
	if CanTransition(from, StatusInProgress) && CanTransition(StatusInProgress, StatusDone) {
		return nil
	}
	return ValidateTransition(from, StatusDone)
}
