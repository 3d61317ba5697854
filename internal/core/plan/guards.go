// Package plan contains the pure business logic for plans.
// Guards are pure functions that evaluate preconditions without side effects.
package plan

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

// CreatePlanContext provides context for plan creation guards.
type CreatePlanContext struct {
	Title string
}

// PatchContext provides context for plan patch guards.
type PatchContext struct {
	PlanID        string
	FieldsPresent int
	Title         *string
}

// CanCreatePlan evaluates whether a plan can be created.
// Rules:
// - Title must not be blank
func CanCreatePlan(ctx CreatePlanContext) GuardResult {
	if strings.TrimSpace(ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "plan title is required"}
	}
	return GuardResult{Allowed: true}
}

// CanPatch evaluates whether a plan patch request is well formed.
// Rules:
// - At least one field must be present
// - Title, when present, must not be blank
func CanPatch(ctx PatchContext) GuardResult {
	if ctx.FieldsPresent == 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("no fields to update for plan %s", ctx.PlanID),
		}
	}
	if ctx.Title != nil && strings.TrimSpace(*ctx.Title) == "" {
		return GuardResult{Allowed: false, Reason: "plan title cannot be blank"}
	}
	return GuardResult{Allowed: true}
}
