package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workhub/internal/ports/secondary"
)

// TodoRepository implements secondary.TodoRepository with SQLite.
type TodoRepository struct {
	db Querier
}

// NewTodoRepository creates a new SQLite todo repository.
func NewTodoRepository(db Querier) *TodoRepository {
	return &TodoRepository{db: db}
}

const todoColumns = `id, workspace_id, plan_id, parent_todo_id, title, description, position,
	created_by, owner_id, metadata, closed_at, created_at, updated_at`

// Create persists a new todo.
func (r *TodoRepository) Create(ctx context.Context, todo *secondary.TodoRecord) error {
	metadata, err := encodeMap(todo.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO todos ("+todoColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		todo.ID, todo.WorkspaceID, nullString(todo.PlanID), nullString(todo.ParentTodoID), todo.Title,
		nullString(todo.Description), todo.Position, todo.CreatedBy, todo.OwnerID, metadata,
		nullTime(todo.ClosedAt), todo.CreatedAt.UTC(), todo.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// GetByID retrieves a todo by its ID.
func (r *TodoRepository) GetByID(ctx context.Context, workspaceID, id string) (*secondary.TodoRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = ? AND workspace_id = ?",
		id, workspaceID,
	)
	record, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("todo", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return record, nil
}

// List retrieves todos matching the given filters, ordered by position.
func (r *TodoRepository) List(ctx context.Context, filters secondary.TodoFilters) ([]*secondary.TodoRecord, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE workspace_id = ?"
	args := []any{filters.WorkspaceID}

	if filters.PlanID != "" {
		query += " AND plan_id = ?"
		args = append(args, filters.PlanID)
	}
	if filters.ParentTodoID != "" {
		query += " AND parent_todo_id = ?"
		args = append(args, filters.ParentTodoID)
	} else if filters.RootsOnly {
		query += " AND parent_todo_id IS NULL"
	}
	if filters.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filters.OwnerID)
	}

	query += " ORDER BY position ASC, created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	var todos []*secondary.TodoRecord
	for rows.Next() {
		record, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, record)
	}
	return todos, rows.Err()
}

// Update writes the mutable fields of an existing todo.
func (r *TodoRepository) Update(ctx context.Context, todo *secondary.TodoRecord) error {
	metadata, err := encodeMap(todo.Metadata)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, description = ?, position = ?, owner_id = ?, metadata = ?,
			closed_at = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		todo.Title, nullString(todo.Description), todo.Position, todo.OwnerID, metadata,
		nullTime(todo.ClosedAt), todo.UpdatedAt.UTC(),
		todo.ID, todo.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return checkAffected(result, "todo", todo.ID)
}

// NextPosition returns one past the highest sibling position under the same plan and parent.
func (r *TodoRepository) NextPosition(ctx context.Context, workspaceID, planID, parentTodoID string) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM todos
		WHERE workspace_id = ? AND plan_id IS ? AND parent_todo_id IS ?`,
		workspaceID, nullString(planID), nullString(parentTodoID),
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute todo position: %w", err)
	}
	return next, nil
}

func scanTodo(row rowScanner) (*secondary.TodoRecord, error) {
	var (
		planID    sql.NullString
		parentID  sql.NullString
		desc      sql.NullString
		metadata  string
		closedAt  sql.NullTime
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.TodoRecord{}
	if err := row.Scan(&record.ID, &record.WorkspaceID, &planID, &parentID, &record.Title, &desc, &record.Position,
		&record.CreatedBy, &record.OwnerID, &metadata, &closedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	m, err := decodeMap(metadata)
	if err != nil {
		return nil, err
	}
	record.PlanID = planID.String
	record.ParentTodoID = parentID.String
	record.Description = desc.String
	record.Metadata = m
	record.ClosedAt = timePtr(closedAt)
	record.CreatedAt = createdAt.UTC()
	record.UpdatedAt = updatedAt.UTC()
	return record, nil
}

// Ensure TodoRepository implements the interface
var _ secondary.TodoRepository = (*TodoRepository)(nil)
