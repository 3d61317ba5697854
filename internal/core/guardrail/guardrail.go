// Package guardrail contains the pure business logic deciding whether a task
// action may proceed given the guardrails scoped to it.
package guardrail

import "github.com/example/workhub/internal/apperr"

// Category classifies what a guardrail protects.
type Category string

const (
	CategoryScope    Category = "scope"
	CategoryQuality  Category = "quality"
	CategorySafety   Category = "safety"
	CategoryApproval Category = "approval"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryScope, CategoryQuality, CategorySafety, CategoryApproval:
		return true
	}
	return false
}

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.IsValid() {
		return "", apperr.Validation("invalid guardrail category %q", raw)
	}
	return c, nil
}

// Decision is the outcome of evaluating one or more guardrails.
type Decision string

const (
	DecisionAllow         Decision = "allow"
	DecisionBlock         Decision = "block"
	DecisionNeedsApproval Decision = "needs_approval"
)

// EntityType names what a guardrail is attached to.
type EntityType string

const (
	EntityTask EntityType = "task"
	EntityTodo EntityType = "todo"
	EntityPlan EntityType = "plan"
)

// IsValid reports whether e is a known entity type.
func (e EntityType) IsValid() bool {
	return e == EntityTask || e == EntityTodo || e == EntityPlan
}

// Config keys that simulate violations deterministically.
const (
	ConfigViolated        = "violated"
	ConfigApprovalGranted = "approvalGranted"
)

// Classify decides a single guardrail.
// Rules:
// - Inactive or not violated: allow
// - Violated scope/safety: block, approval cannot override
// - Violated approval/quality: needs_approval unless approval was granted
func Classify(category Category, active, violated, approvalGranted bool) Decision {
	if !active || !violated {
		return DecisionAllow
	}
	switch category {
	case CategoryScope, CategorySafety:
		return DecisionBlock
	case CategoryApproval, CategoryQuality:
		if approvalGranted {
			return DecisionAllow
		}
		return DecisionNeedsApproval
	default:
		return DecisionBlock
	}
}
