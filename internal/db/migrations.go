package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sql.Tx) error
}

// migrations is the list of all migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_work_hierarchy",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_run_and_guardrail_indexes",
		Up:      migrationV2,
	},
}

// LatestVersion is the schema version a fully migrated database reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// InitSchema brings the database up to the latest schema version.
// A fresh database gets SchemaSQL directly and is stamped at LatestVersion.
func InitSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	if current == 0 {
		var tableCount int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('plans', 'todos', 'tasks')",
		).Scan(&tableCount)
		if err != nil {
			return fmt.Errorf("failed to inspect existing tables: %w", err)
		}
		if tableCount == 0 {
			return createFresh(ctx, db, logger)
		}
	}

	return runMigrations(ctx, db, current, logger)
}

// CurrentVersion returns the highest applied migration version, 0 for a fresh database.
func CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

func createFresh(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to stamp schema version %d: %w", m.Version, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}

	logger.Info("created database schema", "version", LatestVersion())
	return nil
}

func runMigrations(ctx context.Context, db *sql.DB, current int, logger *slog.Logger) error {
	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		logger.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}
	return nil
}

// migrationV1 creates the base tables. Indexes arrived in V2.
func migrationV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			created_by TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS todos (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			plan_id TEXT,
			parent_todo_id TEXT,
			title TEXT NOT NULL,
			description TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			closed_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (plan_id) REFERENCES plans(id),
			FOREIGN KEY (parent_todo_id) REFERENCES todos(id)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			todo_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('todo', 'planned', 'in_progress', 'blocked', 'done', 'deferred', 'cancelled')) DEFAULT 'todo',
			created_by TEXT NOT NULL,
			assignee_id TEXT,
			started_at DATETIME,
			completed_at DATETIME,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (todo_id) REFERENCES todos(id)
		)`,
		`CREATE TABLE IF NOT EXISTS execution_runs (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			plan_id TEXT,
			todo_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			mode TEXT NOT NULL CHECK(mode IN ('manual', 'sub_agentic', 'full_auto')) DEFAULT 'manual',
			status TEXT NOT NULL CHECK(status IN ('pending', 'in_progress', 'paused', 'blocked', 'completed', 'failed', 'cancelled')),
			started_by TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			completed_at DATETIME,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (task_id) REFERENCES tasks(id)
		)`,
		`CREATE TABLE IF NOT EXISTS execution_events (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			type TEXT NOT NULL,
			actor_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			sequence INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (run_id) REFERENCES execution_runs(id),
			UNIQUE(run_id, sequence)
		)`,
		`CREATE TABLE IF NOT EXISTS guardrails (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			entity_type TEXT NOT NULL CHECK(entity_type IN ('task', 'todo', 'plan')),
			entity_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL CHECK(category IN ('scope', 'quality', 'safety', 'approval')),
			active INTEGER NOT NULL DEFAULT 1,
			config TEXT NOT NULL DEFAULT '{}',
			created_by TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS agent_configs (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('agent', 'workflow')),
			name TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			content TEXT NOT NULL DEFAULT '{}',
			parent_id TEXT,
			lineage_root_id TEXT NOT NULL,
			detached INTEGER NOT NULL DEFAULT 0,
			created_by TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES agent_configs(id)
		)`,
	}
	return execAll(ctx, tx, stmts)
}

func migrationV2(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx, []string{
		"CREATE INDEX IF NOT EXISTS idx_plans_workspace ON plans(workspace_id)",
		"CREATE INDEX IF NOT EXISTS idx_todos_workspace ON todos(workspace_id)",
		"CREATE INDEX IF NOT EXISTS idx_todos_plan ON todos(plan_id)",
		"CREATE INDEX IF NOT EXISTS idx_todos_parent ON todos(parent_todo_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_workspace ON tasks(workspace_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_todo ON tasks(todo_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)",
		"CREATE INDEX IF NOT EXISTS idx_runs_task ON execution_runs(task_id, started_at)",
		"CREATE INDEX IF NOT EXISTS idx_guardrails_entity ON guardrails(workspace_id, entity_type, entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_agent_configs_kind ON agent_configs(workspace_id, kind)",
	})
}

func execAll(ctx context.Context, tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
