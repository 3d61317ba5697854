package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/workhub/internal/ports/secondary"
)

// GuardrailRepository implements secondary.GuardrailRepository with SQLite.
type GuardrailRepository struct {
	db Querier
}

// NewGuardrailRepository creates a new SQLite guardrail repository.
func NewGuardrailRepository(db Querier) *GuardrailRepository {
	return &GuardrailRepository{db: db}
}

const guardrailColumns = `id, workspace_id, entity_type, entity_id, name, category, active, config,
	created_by, created_at, updated_at`

// Create persists a new guardrail.
func (r *GuardrailRepository) Create(ctx context.Context, g *secondary.GuardrailRecord) error {
	config, err := encodeMap(g.Config)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO guardrails ("+guardrailColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		g.ID, g.WorkspaceID, g.EntityType, g.EntityID, g.Name, g.Category, boolInt(g.Active), config,
		g.CreatedBy, g.CreatedAt.UTC(), g.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create guardrail: %w", err)
	}
	return nil
}

// GetByID retrieves a guardrail by its ID.
func (r *GuardrailRepository) GetByID(ctx context.Context, workspaceID, id string) (*secondary.GuardrailRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+guardrailColumns+" FROM guardrails WHERE id = ? AND workspace_id = ?",
		id, workspaceID,
	)
	record, err := scanGuardrail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("guardrail", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guardrail: %w", err)
	}
	return record, nil
}

// ListForScopes returns the guardrails attached to any of the given entities,
// in creation order.
func (r *GuardrailRepository) ListForScopes(ctx context.Context, workspaceID string, scopes []secondary.GuardrailScope, activeOnly bool) ([]*secondary.GuardrailRecord, error) {
	if len(scopes) == 0 {
		return []*secondary.GuardrailRecord{}, nil
	}

	clauses := make([]string, 0, len(scopes))
	args := []any{workspaceID}
	for _, s := range scopes {
		clauses = append(clauses, "(entity_type = ? AND entity_id = ?)")
		args = append(args, s.EntityType, s.EntityID)
	}

	query := "SELECT " + guardrailColumns + " FROM guardrails WHERE workspace_id = ? AND (" +
		strings.Join(clauses, " OR ") + ")"
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardrails: %w", err)
	}
	defer rows.Close()

	guardrails := []*secondary.GuardrailRecord{}
	for rows.Next() {
		record, err := scanGuardrail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guardrail: %w", err)
		}
		guardrails = append(guardrails, record)
	}
	return guardrails, rows.Err()
}

// SetActive toggles a guardrail.
func (r *GuardrailRepository) SetActive(ctx context.Context, workspaceID, id string, active bool, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE guardrails SET active = ?, updated_at = ? WHERE id = ? AND workspace_id = ?",
		boolInt(active), updatedAt.UTC(), id, workspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update guardrail: %w", err)
	}
	return checkAffected(result, "guardrail", id)
}

func scanGuardrail(row rowScanner) (*secondary.GuardrailRecord, error) {
	var (
		active    int
		config    string
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.GuardrailRecord{}
	if err := row.Scan(&record.ID, &record.WorkspaceID, &record.EntityType, &record.EntityID, &record.Name,
		&record.Category, &active, &config, &record.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	m, err := decodeMap(config)
	if err != nil {
		return nil, err
	}
	record.Active = active != 0
	record.Config = m
	record.CreatedAt = createdAt.UTC()
	record.UpdatedAt = updatedAt.UTC()
	return record, nil
}

// Ensure GuardrailRepository implements the interface
var _ secondary.GuardrailRepository = (*GuardrailRepository)(nil)
