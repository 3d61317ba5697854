package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workhub/internal/ports/secondary"
)

// PlanRepository implements secondary.PlanRepository with SQLite.
type PlanRepository struct {
	db Querier
}

// NewPlanRepository creates a new SQLite plan repository.
func NewPlanRepository(db Querier) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, workspace_id, title, description, created_by, owner_id, metadata, created_at, updated_at`

// Create persists a new plan.
func (r *PlanRepository) Create(ctx context.Context, plan *secondary.PlanRecord) error {
	metadata, err := encodeMap(plan.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO plans ("+planColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		plan.ID, plan.WorkspaceID, plan.Title, nullString(plan.Description), plan.CreatedBy, plan.OwnerID,
		metadata, plan.CreatedAt.UTC(), plan.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

// GetByID retrieves a plan by its ID.
func (r *PlanRepository) GetByID(ctx context.Context, workspaceID, id string) (*secondary.PlanRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM plans WHERE id = ? AND workspace_id = ?",
		id, workspaceID,
	)
	record, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("plan", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return record, nil
}

// List retrieves plans matching the given filters, newest first.
func (r *PlanRepository) List(ctx context.Context, filters secondary.PlanFilters) ([]*secondary.PlanRecord, error) {
	query := "SELECT " + planColumns + " FROM plans WHERE workspace_id = ?"
	args := []any{filters.WorkspaceID}

	if filters.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filters.OwnerID)
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*secondary.PlanRecord
	for rows.Next() {
		record, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, record)
	}
	return plans, rows.Err()
}

// Update writes title, description, owner and metadata of an existing plan.
func (r *PlanRepository) Update(ctx context.Context, plan *secondary.PlanRecord) error {
	metadata, err := encodeMap(plan.Metadata)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE plans SET title = ?, description = ?, owner_id = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		plan.Title, nullString(plan.Description), plan.OwnerID, metadata, plan.UpdatedAt.UTC(),
		plan.ID, plan.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	return checkAffected(result, "plan", plan.ID)
}

func scanPlan(row rowScanner) (*secondary.PlanRecord, error) {
	var (
		desc      sql.NullString
		metadata  string
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.PlanRecord{}
	if err := row.Scan(&record.ID, &record.WorkspaceID, &record.Title, &desc, &record.CreatedBy, &record.OwnerID,
		&metadata, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	m, err := decodeMap(metadata)
	if err != nil {
		return nil, err
	}
	record.Description = desc.String
	record.Metadata = m
	record.CreatedAt = createdAt.UTC()
	record.UpdatedAt = updatedAt.UTC()
	return record, nil
}

// Ensure PlanRepository implements the interface
var _ secondary.PlanRepository = (*PlanRepository)(nil)
