package app

import (
	"context"
	"fmt"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/core/permission"
	"github.com/example/workhub/internal/core/plan"
	"github.com/example/workhub/internal/core/task"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

// PlanServiceImpl implements the PlanService interface.
type PlanServiceImpl struct {
	deps Deps
}

// NewPlanService creates a new PlanService with injected dependencies.
func NewPlanService(deps Deps) *PlanServiceImpl {
	return &PlanServiceImpl{deps: deps}
}

// CreatePlan creates a new plan.
func (s *PlanServiceImpl) CreatePlan(ctx context.Context, actor primary.Actor, req primary.CreatePlanRequest) (*primary.Plan, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := plan.CanCreatePlan(plan.CreatePlanContext{Title: req.Title}).Error(); err != nil {
		return nil, err
	}

	owner := req.OwnerID
	if owner == "" {
		owner = actor.UserID
	}
	now := s.deps.Clock.Now()
	record := &secondary.PlanRecord{
		ID:          s.deps.IDs.NewID(prefixPlan),
		WorkspaceID: actor.WorkspaceID,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   actor.UserID,
		OwnerID:     owner,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if record.Metadata == nil {
		record.Metadata = map[string]any{}
	}

	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		return tx.Plans().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return recordToPlan(record, string(task.StatusTodo), 0), nil
}

// GetPlan retrieves a plan with its derived status.
func (s *PlanServiceImpl) GetPlan(ctx context.Context, actor primary.Actor, planID string) (*primary.Plan, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	record, err := s.deps.Store.Plans().GetByID(ctx, actor.WorkspaceID, planID)
	if err != nil {
		return nil, err
	}
	return s.withStatus(ctx, s.deps.Store, record)
}

// ListPlans lists plans in the actor's workspace.
func (s *PlanServiceImpl) ListPlans(ctx context.Context, actor primary.Actor, filters primary.PlanFilters) ([]*primary.Plan, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	records, err := s.deps.Store.Plans().List(ctx, secondary.PlanFilters{
		WorkspaceID: actor.WorkspaceID,
		OwnerID:     filters.OwnerID,
	})
	if err != nil {
		return nil, err
	}

	plans := make([]*primary.Plan, 0, len(records))
	for _, r := range records {
		p, err := s.withStatus(ctx, s.deps.Store, r)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// PatchPlan updates title, description, owner and/or metadata.
// Changing the owner requires reassign rights; everything else requires edit rights.
func (s *PlanServiceImpl) PatchPlan(ctx context.Context, actor primary.Actor, req primary.PatchPlanRequest) (*primary.Plan, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	present := countPresent(req.Title != nil, req.Description != nil, req.OwnerID != nil, req.Metadata != nil)
	if err := plan.CanPatch(plan.PatchContext{
		PlanID: req.PlanID, FieldsPresent: present, Title: req.Title,
	}).Error(); err != nil {
		return nil, err
	}

	var result *primary.Plan
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		record, err := tx.Plans().GetByID(ctx, actor.WorkspaceID, req.PlanID)
		if err != nil {
			return err
		}

		facts := planFacts(actor, record)
		if req.Title != nil || req.Description != nil || req.Metadata != nil {
			if err := permission.Check(permission.ActionTodoEdit, facts).Error(); err != nil {
				return err
			}
		}
		if req.OwnerID != nil {
			if *req.OwnerID == "" {
				return apperr.Validation("plan owner cannot be empty")
			}
			if err := permission.Check(permission.ActionTodoReassign, facts).Error(); err != nil {
				return err
			}
		}

		changed := false
		if req.Title != nil && *req.Title != record.Title {
			record.Title = *req.Title
			changed = true
		}
		if req.Description != nil && *req.Description != record.Description {
			record.Description = *req.Description
			changed = true
		}
		if req.OwnerID != nil && *req.OwnerID != record.OwnerID {
			record.OwnerID = *req.OwnerID
			changed = true
		}
		if req.Metadata != nil && !sameMap(req.Metadata, record.Metadata) {
			record.Metadata = req.Metadata
			changed = true
		}
		if !changed {
			return apperr.Conflict("patch does not change plan %s", req.PlanID)
		}

		record.UpdatedAt = s.deps.Clock.Now()
		if err := tx.Plans().Update(ctx, record); err != nil {
			return err
		}

		result, err = s.withStatus(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withStatus derives the plan's aggregate status from every task under it.
func (s *PlanServiceImpl) withStatus(ctx context.Context, repos secondary.Repositories, record *secondary.PlanRecord) (*primary.Plan, error) {
	statuses, err := repos.Tasks().StatusesUnderPlan(ctx, record.WorkspaceID, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive plan status: %w", err)
	}
	return recordToPlan(record, string(deriveStatus(statuses)), len(statuses)), nil
}

func deriveStatus(raw []string) task.Status {
	statuses := make([]task.Status, len(raw))
	for i, s := range raw {
		statuses[i] = task.Status(s)
	}
	return task.DeriveAggregateStatus(statuses)
}

func countPresent(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

// Ensure PlanServiceImpl implements the interface
var _ primary.PlanService = (*PlanServiceImpl)(nil)
