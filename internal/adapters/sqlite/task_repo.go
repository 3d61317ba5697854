package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workhub/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db Querier
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db Querier) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, workspace_id, todo_id, title, description, position, status, created_by,
	assignee_id, started_at, completed_at, metadata, created_at, updated_at`

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	metadata, err := encodeMap(task.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.WorkspaceID, task.TodoID, task.Title, nullString(task.Description), task.Position,
		task.Status, task.CreatedBy, nullString(task.AssigneeID), nullTime(task.StartedAt), nullTime(task.CompletedAt),
		metadata, task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, workspaceID, id string) (*secondary.TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND workspace_id = ?",
		id, workspaceID,
	)
	record, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return record, nil
}

// GetBundle retrieves a task together with its todo and the todo's plan.
// All reads go through the same Querier, so inside a transaction the bundle is consistent.
func (r *TaskRepository) GetBundle(ctx context.Context, workspaceID, id string) (*secondary.TaskBundle, error) {
	task, err := r.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	todo, err := NewTodoRepository(r.db).GetByID(ctx, workspaceID, task.TodoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load todo for task %s: %w", id, err)
	}

	bundle := &secondary.TaskBundle{Task: task, Todo: todo}
	if todo.PlanID != "" {
		plan, err := NewPlanRepository(r.db).GetByID(ctx, workspaceID, todo.PlanID)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan for task %s: %w", id, err)
		}
		bundle.Plan = plan
	}
	return bundle, nil
}

// List retrieves tasks matching the given filters, ordered by position.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE workspace_id = ?"
	args := []any{filters.WorkspaceID}

	if filters.TodoID != "" {
		query += " AND todo_id = ?"
		args = append(args, filters.TodoID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.AssigneeID != "" {
		query += " AND assignee_id = ?"
		args = append(args, filters.AssigneeID)
	}

	query += " ORDER BY position ASC, created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}
	return tasks, rows.Err()
}

// Update writes the mutable fields of an existing task.
func (r *TaskRepository) Update(ctx context.Context, task *secondary.TaskRecord) error {
	metadata, err := encodeMap(task.Metadata)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, position = ?, status = ?, assignee_id = ?,
			started_at = ?, completed_at = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		task.Title, nullString(task.Description), task.Position, task.Status, nullString(task.AssigneeID),
		nullTime(task.StartedAt), nullTime(task.CompletedAt), metadata, task.UpdatedAt.UTC(),
		task.ID, task.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return checkAffected(result, "task", task.ID)
}

// NextPosition returns one past the highest task position in the todo.
func (r *TaskRepository) NextPosition(ctx context.Context, workspaceID, todoID string) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE workspace_id = ? AND todo_id = ?",
		workspaceID, todoID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute task position: %w", err)
	}
	return next, nil
}

// StatusesUnderTodo returns the status of every task under the todo and all of its descendants.
func (r *TaskRepository) StatusesUnderTodo(ctx context.Context, workspaceID, todoID string) ([]string, error) {
	return r.statuses(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM todos WHERE id = ? AND workspace_id = ?
			UNION
			SELECT t.id FROM todos t JOIN subtree s ON t.parent_todo_id = s.id
			WHERE t.workspace_id = ?
		)
		SELECT status FROM tasks
		WHERE workspace_id = ? AND todo_id IN (SELECT id FROM subtree)`,
		todoID, workspaceID, workspaceID, workspaceID,
	)
}

// StatusesUnderPlan returns the status of every task under any todo of the plan.
func (r *TaskRepository) StatusesUnderPlan(ctx context.Context, workspaceID, planID string) ([]string, error) {
	return r.statuses(ctx, `
		SELECT t.status FROM tasks t
		JOIN todos d ON d.id = t.todo_id
		WHERE t.workspace_id = ? AND d.plan_id = ?`,
		workspaceID, planID,
	)
}

func (r *TaskRepository) statuses(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query task statuses: %w", err)
	}
	defer rows.Close()

	statuses := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan task status: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func scanTask(row rowScanner) (*secondary.TaskRecord, error) {
	var (
		desc        sql.NullString
		assignee    sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
		metadata    string
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.TaskRecord{}
	if err := row.Scan(&record.ID, &record.WorkspaceID, &record.TodoID, &record.Title, &desc, &record.Position,
		&record.Status, &record.CreatedBy, &assignee, &startedAt, &completedAt, &metadata,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	m, err := decodeMap(metadata)
	if err != nil {
		return nil, err
	}
	record.Description = desc.String
	record.AssigneeID = assignee.String
	record.StartedAt = timePtr(startedAt)
	record.CompletedAt = timePtr(completedAt)
	record.Metadata = m
	record.CreatedAt = createdAt.UTC()
	record.UpdatedAt = updatedAt.UTC()
	return record, nil
}

// Ensure TaskRepository implements the interface
var _ secondary.TaskRepository = (*TaskRepository)(nil)
