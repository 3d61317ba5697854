package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workhub/internal/ports/secondary"
)

// AgentConfigRepository implements secondary.AgentConfigRepository with SQLite.
type AgentConfigRepository struct {
	db Querier
}

// NewAgentConfigRepository creates a new SQLite agent/workflow definition repository.
func NewAgentConfigRepository(db Querier) *AgentConfigRepository {
	return &AgentConfigRepository{db: db}
}

const agentConfigColumns = `id, workspace_id, kind, name, version, content, parent_id, lineage_root_id,
	detached, created_by, created_at, updated_at`

// Create persists a new definition.
func (r *AgentConfigRepository) Create(ctx context.Context, cfg *secondary.AgentConfigRecord) error {
	content, err := encodeMap(cfg.Content)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO agent_configs ("+agentConfigColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		cfg.ID, cfg.WorkspaceID, cfg.Kind, cfg.Name, cfg.Version, content, nullString(cfg.ParentID),
		cfg.LineageRootID, boolInt(cfg.Detached), cfg.CreatedBy, cfg.CreatedAt.UTC(), cfg.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create agent config: %w", err)
	}
	return nil
}

// GetByID retrieves a definition by its ID.
func (r *AgentConfigRepository) GetByID(ctx context.Context, workspaceID, id string) (*secondary.AgentConfigRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+agentConfigColumns+" FROM agent_configs WHERE id = ? AND workspace_id = ?",
		id, workspaceID,
	)
	record, err := scanAgentConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("agent config", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent config: %w", err)
	}
	return record, nil
}

// Update writes name, content, version and the detached flag.
func (r *AgentConfigRepository) Update(ctx context.Context, cfg *secondary.AgentConfigRecord) error {
	content, err := encodeMap(cfg.Content)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE agent_configs SET name = ?, version = ?, content = ?, detached = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`,
		cfg.Name, cfg.Version, content, boolInt(cfg.Detached), cfg.UpdatedAt.UTC(),
		cfg.ID, cfg.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent config: %w", err)
	}
	return checkAffected(result, "agent config", cfg.ID)
}

// List retrieves definitions, optionally filtered by kind.
func (r *AgentConfigRepository) List(ctx context.Context, workspaceID, kind string) ([]*secondary.AgentConfigRecord, error) {
	query := "SELECT " + agentConfigColumns + " FROM agent_configs WHERE workspace_id = ?"
	args := []any{workspaceID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY name ASC, created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent configs: %w", err)
	}
	defer rows.Close()

	var configs []*secondary.AgentConfigRecord
	for rows.Next() {
		record, err := scanAgentConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent config: %w", err)
		}
		configs = append(configs, record)
	}
	return configs, rows.Err()
}

func scanAgentConfig(row rowScanner) (*secondary.AgentConfigRecord, error) {
	var (
		content   string
		parentID  sql.NullString
		detached  int
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.AgentConfigRecord{}
	if err := row.Scan(&record.ID, &record.WorkspaceID, &record.Kind, &record.Name, &record.Version, &content,
		&parentID, &record.LineageRootID, &detached, &record.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	m, err := decodeMap(content)
	if err != nil {
		return nil, err
	}
	record.Content = m
	record.ParentID = parentID.String
	record.Detached = detached != 0
	record.CreatedAt = createdAt.UTC()
	record.UpdatedAt = updatedAt.UTC()
	return record, nil
}

// Ensure AgentConfigRepository implements the interface
var _ secondary.AgentConfigRepository = (*AgentConfigRepository)(nil)
