package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workhub/internal/ports/secondary"
)

// RunRepository implements secondary.RunRepository with SQLite.
type RunRepository struct {
	db Querier
}

// NewRunRepository creates a new SQLite execution run repository.
func NewRunRepository(db Querier) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `id, workspace_id, plan_id, todo_id, task_id, mode, status, started_by,
	started_at, completed_at, metadata, created_at, updated_at`

// Create persists a new run.
func (r *RunRepository) Create(ctx context.Context, run *secondary.RunRecord) error {
	metadata, err := encodeMap(run.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO execution_runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.WorkspaceID, nullString(run.PlanID), run.TodoID, run.TaskID, run.Mode, run.Status, run.StartedBy,
		run.StartedAt.UTC(), nullTime(run.CompletedAt), metadata, run.CreatedAt.UTC(), run.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, workspaceID, id string) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM execution_runs WHERE id = ? AND workspace_id = ?",
		id, workspaceID,
	)
	record, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("run", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return record, nil
}

// Update writes status, completed_at and metadata of an existing run.
func (r *RunRepository) Update(ctx context.Context, run *secondary.RunRecord) error {
	metadata, err := encodeMap(run.Metadata)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE execution_runs SET status = ?, completed_at = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		run.Status, nullTime(run.CompletedAt), metadata, run.UpdatedAt.UTC(),
		run.ID, run.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return checkAffected(result, "run", run.ID)
}

// LatestForTask returns the most recent run of a task, or nil if it never ran.
// Ties on started_at fall back to created_at, then id.
func (r *RunRepository) LatestForTask(ctx context.Context, workspaceID, taskID string) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM execution_runs
		WHERE workspace_id = ? AND task_id = ?
		ORDER BY started_at DESC, created_at DESC, id DESC
		LIMIT 1`,
		workspaceID, taskID,
	)
	record, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return record, nil
}

// ListByTask returns all runs of a task, most recent first.
func (r *RunRepository) ListByTask(ctx context.Context, workspaceID, taskID string) ([]*secondary.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM execution_runs
		WHERE workspace_id = ? AND task_id = ?
		ORDER BY started_at DESC, created_at DESC, id DESC`,
		workspaceID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, record)
	}
	return runs, rows.Err()
}

func scanRun(row rowScanner) (*secondary.RunRecord, error) {
	var (
		planID      sql.NullString
		startedAt   time.Time
		completedAt sql.NullTime
		metadata    string
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.RunRecord{}
	if err := row.Scan(&record.ID, &record.WorkspaceID, &planID, &record.TodoID, &record.TaskID, &record.Mode,
		&record.Status, &record.StartedBy, &startedAt, &completedAt, &metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	m, err := decodeMap(metadata)
	if err != nil {
		return nil, err
	}
	record.PlanID = planID.String
	record.StartedAt = startedAt.UTC()
	record.CompletedAt = timePtr(completedAt)
	record.Metadata = m
	record.CreatedAt = createdAt.UTC()
	record.UpdatedAt = updatedAt.UTC()
	return record, nil
}

// Ensure RunRepository implements the interface
var _ secondary.RunRepository = (*RunRepository)(nil)
