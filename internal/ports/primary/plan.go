package primary

import (
	"context"
	"time"
)

// PlanService defines the primary port for plan operations.
type PlanService interface {
	// CreatePlan creates a new plan owned by the actor unless an owner is given.
	CreatePlan(ctx context.Context, actor Actor, req CreatePlanRequest) (*Plan, error)

	// GetPlan retrieves a plan with its derived status.
	GetPlan(ctx context.Context, actor Actor, planID string) (*Plan, error)

	// ListPlans lists plans in the actor's workspace.
	ListPlans(ctx context.Context, actor Actor, filters PlanFilters) ([]*Plan, error)

	// PatchPlan updates title, description, owner and/or metadata.
	PatchPlan(ctx context.Context, actor Actor, req PatchPlanRequest) (*Plan, error)
}

// CreatePlanRequest contains parameters for creating a plan.
type CreatePlanRequest struct {
	Title       string
	Description string
	OwnerID     string // Optional, defaults to the actor
	Metadata    map[string]any
}

// PatchPlanRequest contains parameters for patching a plan. Nil fields are left unchanged.
type PatchPlanRequest struct {
	PlanID      string
	Title       *string
	Description *string
	OwnerID     *string
	Metadata    map[string]any
}

// PlanFilters contains filter options for listing plans.
type PlanFilters struct {
	OwnerID string
}

// Plan represents a plan entity at the port boundary.
type Plan struct {
	ID          string
	WorkspaceID string
	Title       string
	Description string
	CreatedBy   string
	OwnerID     string
	Metadata    map[string]any
	Status      string // derived from every task under the plan
	TaskCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
