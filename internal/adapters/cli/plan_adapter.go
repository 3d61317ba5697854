package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/workhub/internal/ports/primary"
)

// PlanAdapter is a thin adapter that translates CLI operations to PlanService calls.
type PlanAdapter struct {
	service primary.PlanService
	actor   primary.Actor
	out     io.Writer
}

// NewPlanAdapter creates a new PlanAdapter acting as actor.
func NewPlanAdapter(service primary.PlanService, actor primary.Actor, out io.Writer) *PlanAdapter {
	return &PlanAdapter{service: service, actor: actor, out: out}
}

// Create creates a new plan.
func (a *PlanAdapter) Create(ctx context.Context, req primary.CreatePlanRequest) (*primary.Plan, error) {
	plan, err := a.service.CreatePlan(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created plan %s: %s\n", plan.ID, plan.Title)
	return plan, nil
}

// List lists plans with their derived status.
func (a *PlanAdapter) List(ctx context.Context, filters primary.PlanFilters) error {
	plans, err := a.service.ListPlans(ctx, a.actor, filters)
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}
	if len(plans) == 0 {
		fmt.Fprintln(a.out, "No plans found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-41s %-12s %-6s %s\n", "ID", "STATUS", "TASKS", "TITLE")
	fmt.Fprintln(a.out, rule)
	for _, p := range plans {
		fmt.Fprintf(a.out, "%-41s %-12s %-6d %s\n", p.ID, colorStatus(p.Status), p.TaskCount, p.Title)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays a single plan.
func (a *PlanAdapter) Show(ctx context.Context, planID string) (*primary.Plan, error) {
	plan, err := a.service.GetPlan(ctx, a.actor, planID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nPlan:    %s\n", plan.ID)
	fmt.Fprintf(a.out, "Title:   %s\n", plan.Title)
	fmt.Fprintf(a.out, "Status:  %s (%d tasks)\n", colorStatus(plan.Status), plan.TaskCount)
	fmt.Fprintf(a.out, "Owner:   %s\n", orDash(plan.OwnerID))
	if plan.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", plan.Description)
	}
	writeMap(a.out, "Metadata", plan.Metadata)
	fmt.Fprintf(a.out, "Created: %s\n\n", formatTime(plan.CreatedAt))
	return plan, nil
}

// Update patches a plan.
func (a *PlanAdapter) Update(ctx context.Context, req primary.PatchPlanRequest) error {
	plan, err := a.service.PatchPlan(ctx, a.actor, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Plan %s updated\n", plan.ID)
	return nil
}
