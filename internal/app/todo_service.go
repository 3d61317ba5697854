package app

import (
	"context"
	"fmt"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/core/permission"
	"github.com/example/workhub/internal/core/todo"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

// TodoServiceImpl implements the TodoService interface.
type TodoServiceImpl struct {
	deps Deps
}

// NewTodoService creates a new TodoService with injected dependencies.
func NewTodoService(deps Deps) *TodoServiceImpl {
	return &TodoServiceImpl{deps: deps}
}

// CreateTodo creates a todo. A nested todo inherits its parent's plan and
// requires edit rights on the parent.
func (s *TodoServiceImpl) CreateTodo(ctx context.Context, actor primary.Actor, req primary.CreateTodoRequest) (*primary.Todo, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var created *secondary.TodoRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		guardCtx := todo.CreateContext{
			Title:        req.Title,
			Position:     req.Position,
			PlanID:       req.PlanID,
			ParentTodoID: req.ParentTodoID,
		}

		if req.PlanID != "" {
			if _, err := tx.Plans().GetByID(ctx, actor.WorkspaceID, req.PlanID); err != nil {
				return err
			}
		}
		if req.ParentTodoID != "" {
			parent, err := tx.Todos().GetByID(ctx, actor.WorkspaceID, req.ParentTodoID)
			if err != nil {
				return err
			}
			if err := permission.Check(permission.ActionTodoEdit, todoFacts(actor, parent)).Error(); err != nil {
				return err
			}
			guardCtx.ParentPlanID = parent.PlanID
		}

		if err := todo.CanCreate(guardCtx).Error(); err != nil {
			return err
		}
		planID := todo.ResolvePlan(guardCtx)

		position := 0
		if req.Position != nil {
			position = *req.Position
		} else {
			next, err := tx.Todos().NextPosition(ctx, actor.WorkspaceID, planID, req.ParentTodoID)
			if err != nil {
				return err
			}
			position = next
		}

		owner := req.OwnerID
		if owner == "" {
			owner = actor.UserID
		}
		metadata := req.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		now := s.deps.Clock.Now()
		created = &secondary.TodoRecord{
			ID:           s.deps.IDs.NewID(prefixTodo),
			WorkspaceID:  actor.WorkspaceID,
			PlanID:       planID,
			ParentTodoID: req.ParentTodoID,
			Title:        req.Title,
			Description:  req.Description,
			Position:     position,
			CreatedBy:    actor.UserID,
			OwnerID:      owner,
			Metadata:     metadata,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Todos().Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	return recordToTodo(created, string(deriveStatus(nil))), nil
}

// GetTodo retrieves a todo with its derived status.
func (s *TodoServiceImpl) GetTodo(ctx context.Context, actor primary.Actor, todoID string) (*primary.Todo, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	record, err := s.deps.Store.Todos().GetByID(ctx, actor.WorkspaceID, todoID)
	if err != nil {
		return nil, err
	}
	return withTodoStatus(ctx, s.deps.Store, record)
}

// ListTodos lists todos with optional filters.
func (s *TodoServiceImpl) ListTodos(ctx context.Context, actor primary.Actor, filters primary.TodoFilters) ([]*primary.Todo, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	records, err := s.deps.Store.Todos().List(ctx, secondary.TodoFilters{
		WorkspaceID:  actor.WorkspaceID,
		PlanID:       filters.PlanID,
		ParentTodoID: filters.ParentTodoID,
		RootsOnly:    filters.RootsOnly,
		OwnerID:      filters.OwnerID,
	})
	if err != nil {
		return nil, err
	}

	todos := make([]*primary.Todo, 0, len(records))
	for _, r := range records {
		t, err := withTodoStatus(ctx, s.deps.Store, r)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// PatchTodo updates fields of a todo. Closing or reopening requires close rights;
// every other field requires edit rights.
func (s *TodoServiceImpl) PatchTodo(ctx context.Context, actor primary.Actor, req primary.PatchTodoRequest) (*primary.Todo, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	present := countPresent(req.Title != nil, req.Description != nil, req.Position != nil,
		req.Metadata != nil, req.Closed != nil)
	if err := todo.CanPatch(todo.PatchContext{
		TodoID: req.TodoID, FieldsPresent: present, Title: req.Title, Position: req.Position,
	}).Error(); err != nil {
		return nil, err
	}

	var result *primary.Todo
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		record, err := tx.Todos().GetByID(ctx, actor.WorkspaceID, req.TodoID)
		if err != nil {
			return err
		}

		facts := todoFacts(actor, record)
		if req.Title != nil || req.Description != nil || req.Position != nil || req.Metadata != nil {
			if err := permission.Check(permission.ActionTodoEdit, facts).Error(); err != nil {
				return err
			}
		}
		if req.Closed != nil {
			if err := permission.Check(permission.ActionTodoClose, facts).Error(); err != nil {
				return err
			}
		}

		now := s.deps.Clock.Now()
		changed := false
		if req.Title != nil && *req.Title != record.Title {
			record.Title = *req.Title
			changed = true
		}
		if req.Description != nil && *req.Description != record.Description {
			record.Description = *req.Description
			changed = true
		}
		if req.Position != nil && *req.Position != record.Position {
			record.Position = *req.Position
			changed = true
		}
		if req.Metadata != nil && !sameMap(req.Metadata, record.Metadata) {
			record.Metadata = req.Metadata
			changed = true
		}
		if req.Closed != nil {
			isClosed := record.ClosedAt != nil
			switch {
			case *req.Closed && !isClosed:
				closedAt := now
				record.ClosedAt = &closedAt
				changed = true
			case !*req.Closed && isClosed:
				record.ClosedAt = nil
				changed = true
			}
		}
		if !changed {
			return apperr.Conflict("patch does not change todo %s", req.TodoID)
		}

		record.UpdatedAt = now
		if err := tx.Todos().Update(ctx, record); err != nil {
			return err
		}

		result, err = withTodoStatus(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AssignTodo moves ownership of a todo.
func (s *TodoServiceImpl) AssignTodo(ctx context.Context, actor primary.Actor, todoID, ownerID string) (*primary.Todo, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, apperr.Validation("todo owner is required")
	}

	var result *primary.Todo
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		record, err := tx.Todos().GetByID(ctx, actor.WorkspaceID, todoID)
		if err != nil {
			return err
		}
		if err := permission.Check(permission.ActionTodoReassign, todoFacts(actor, record)).Error(); err != nil {
			return err
		}
		if record.OwnerID == ownerID {
			return apperr.Conflict("todo %s is already owned by %s", todoID, ownerID)
		}

		record.OwnerID = ownerID
		record.UpdatedAt = s.deps.Clock.Now()
		if err := tx.Todos().Update(ctx, record); err != nil {
			return err
		}

		result, err = withTodoStatus(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withTodoStatus derives the todo's aggregate status from its whole subtree.
func withTodoStatus(ctx context.Context, repos secondary.Repositories, record *secondary.TodoRecord) (*primary.Todo, error) {
	statuses, err := repos.Tasks().StatusesUnderTodo(ctx, record.WorkspaceID, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive todo status: %w", err)
	}
	return recordToTodo(record, string(deriveStatus(statuses))), nil
}

// Ensure TodoServiceImpl implements the interface
var _ primary.TodoService = (*TodoServiceImpl)(nil)
