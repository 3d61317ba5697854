package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates a workspace with a small demo hierarchy:
// one plan, a root todo with a nested child, tasks in several states,
// and an approval guardrail on the plan.
func SeedFixtures(ctx context.Context, database *sql.DB, workspaceID, userID string) error {
	now := time.Now().UTC()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO plans (id, workspace_id, title, description, created_by, owner_id, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '{}', ?, ?)`,
		"PLAN-DEMO", workspaceID, "Launch checklist", "Everything needed before launch", userID, userID, now, now,
	); err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}

	todos := []struct{ id, parent, title string }{
		{"TODO-DEMO-1", "", "Prepare release"},
		{"TODO-DEMO-2", "TODO-DEMO-1", "Write release notes"},
	}
	for i, t := range todos {
		var parent sql.NullString
		if t.parent != "" {
			parent = sql.NullString{String: t.parent, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todos (id, workspace_id, plan_id, parent_todo_id, title, position, created_by, owner_id, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, '{}', ?, ?)`,
			t.id, workspaceID, "PLAN-DEMO", parent, t.title, i, userID, userID, now, now,
		); err != nil {
			return fmt.Errorf("seed todos: %w", err)
		}
	}

	tasks := []struct{ id, todo, title, status string }{
		{"TASK-DEMO-1", "TODO-DEMO-1", "Tag the release", "todo"},
		{"TASK-DEMO-2", "TODO-DEMO-1", "Run the smoke tests", "done"},
		{"TASK-DEMO-3", "TODO-DEMO-2", "Draft the changelog", "in_progress"},
	}
	for i, t := range tasks {
		var startedAt, completedAt sql.NullTime
		if t.status == "in_progress" || t.status == "done" {
			startedAt = sql.NullTime{Time: now, Valid: true}
		}
		if t.status == "done" {
			completedAt = sql.NullTime{Time: now, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, workspace_id, todo_id, title, position, status, created_by, started_at, completed_at, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '{}', ?, ?)`,
			t.id, workspaceID, t.todo, t.title, i, t.status, userID, startedAt, completedAt, now, now,
		); err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO guardrails (id, workspace_id, entity_type, entity_id, name, category, active, config, created_by, created_at, updated_at)
		VALUES (?, ?, 'plan', ?, ?, 'approval', 1, '{}', ?, ?, ?)`,
		"GRD-DEMO", workspaceID, "PLAN-DEMO", "Release sign-off", userID, now, now,
	); err != nil {
		return fmt.Errorf("seed guardrails: %w", err)
	}

	return tx.Commit()
}
