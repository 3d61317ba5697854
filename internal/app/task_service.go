package app

import (
	"context"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/core/permission"
	"github.com/example/workhub/internal/core/task"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

// TaskServiceImpl implements the TaskService interface.
type TaskServiceImpl struct {
	deps Deps
}

// NewTaskService creates a new TaskService with injected dependencies.
func NewTaskService(deps Deps) *TaskServiceImpl {
	return &TaskServiceImpl{deps: deps}
}

// CreateTask creates a new task in the todo status. Requires edit rights on the todo.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, actor primary.Actor, req primary.CreateTaskRequest) (*primary.Task, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := task.CanCreate(task.CreateContext{Title: req.Title, Position: req.Position}).Error(); err != nil {
		return nil, err
	}

	var created *secondary.TaskRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		todo, err := tx.Todos().GetByID(ctx, actor.WorkspaceID, req.TodoID)
		if err != nil {
			return err
		}
		if err := permission.Check(permission.ActionTodoEdit, todoFacts(actor, todo)).Error(); err != nil {
			return err
		}

		position := 0
		if req.Position != nil {
			position = *req.Position
		} else {
			next, err := tx.Tasks().NextPosition(ctx, actor.WorkspaceID, todo.ID)
			if err != nil {
				return err
			}
			position = next
		}

		metadata := req.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		now := s.deps.Clock.Now()
		created = &secondary.TaskRecord{
			ID:          s.deps.IDs.NewID(prefixTask),
			WorkspaceID: actor.WorkspaceID,
			TodoID:      todo.ID,
			Title:       req.Title,
			Description: req.Description,
			Position:    position,
			Status:      string(task.StatusTodo),
			CreatedBy:   actor.UserID,
			AssigneeID:  req.AssigneeID,
			Metadata:    metadata,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Tasks().Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	return recordToTask(created), nil
}

// GetTask retrieves a task by ID.
func (s *TaskServiceImpl) GetTask(ctx context.Context, actor primary.Actor, taskID string) (*primary.Task, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	record, err := s.deps.Store.Tasks().GetByID(ctx, actor.WorkspaceID, taskID)
	if err != nil {
		return nil, err
	}
	return recordToTask(record), nil
}

// ListTasks lists tasks with optional filters.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, actor primary.Actor, filters primary.TaskFilters) ([]*primary.Task, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if filters.Status != "" {
		if _, err := task.ParseStatus(filters.Status); err != nil {
			return nil, err
		}
	}

	records, err := s.deps.Store.Tasks().List(ctx, secondary.TaskFilters{
		WorkspaceID: actor.WorkspaceID,
		TodoID:      filters.TodoID,
		Status:      filters.Status,
		AssigneeID:  filters.AssigneeID,
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]*primary.Task, len(records))
	for i, r := range records {
		tasks[i] = recordToTask(r)
	}
	return tasks, nil
}

// PatchTask updates fields of a task. A status change goes through the
// state machine; no execution event is appended for it.
func (s *TaskServiceImpl) PatchTask(ctx context.Context, actor primary.Actor, req primary.PatchTaskRequest) (*primary.Task, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	present := countPresent(req.Title != nil, req.Description != nil, req.Position != nil,
		req.Status != nil, req.Metadata != nil)
	if err := task.CanPatch(task.PatchContext{
		TaskID: req.TaskID, FieldsPresent: present, Title: req.Title, Position: req.Position,
	}).Error(); err != nil {
		return nil, err
	}

	var target task.Status
	if req.Status != nil {
		parsed, err := task.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		target = parsed
	}

	var result *secondary.TaskRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		bundle, err := tx.Tasks().GetBundle(ctx, actor.WorkspaceID, req.TaskID)
		if err != nil {
			return err
		}
		record := bundle.Task
		if err := permission.Check(permission.ActionTaskUpdate, taskFacts(actor, bundle.Todo, record)).Error(); err != nil {
			return err
		}

		now := s.deps.Clock.Now()
		changed := false
		if req.Status != nil {
			from := task.Status(record.Status)
			if err := task.ValidateTransition(from, target); err != nil {
				return err
			}
			if from != target {
				ts := task.ApplyTransition(from, target, task.Timestamps{
					StartedAt:   record.StartedAt,
					CompletedAt: record.CompletedAt,
				}, now)
				record.Status = string(target)
				record.StartedAt = ts.StartedAt
				record.CompletedAt = ts.CompletedAt
				changed = true
			}
		}
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
		if !changed {
			return apperr.Conflict("patch does not change task %s", req.TaskID)
		}

		record.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, record); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToTask(result), nil
}

// AssignTask sets or clears the assignee. Requires reassign rights on the todo.
func (s *TaskServiceImpl) AssignTask(ctx context.Context, actor primary.Actor, taskID, assigneeID string) (*primary.Task, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var result *secondary.TaskRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		bundle, err := tx.Tasks().GetBundle(ctx, actor.WorkspaceID, taskID)
		if err != nil {
			return err
		}
		record := bundle.Task
		if err := permission.Check(permission.ActionTaskReassign, taskFacts(actor, bundle.Todo, record)).Error(); err != nil {
			return err
		}
		if record.AssigneeID == assigneeID {
			if assigneeID == "" {
				return apperr.Conflict("task %s is already unassigned", taskID)
			}
			return apperr.Conflict("task %s is already assigned to %s", taskID, assigneeID)
		}

		record.AssigneeID = assigneeID
		record.UpdatedAt = s.deps.Clock.Now()
		if err := tx.Tasks().Update(ctx, record); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToTask(result), nil
}

// Ensure TaskServiceImpl implements the interface
var _ primary.TaskService = (*TaskServiceImpl)(nil)
