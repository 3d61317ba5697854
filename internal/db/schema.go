package db

// SchemaSQL is the complete schema for fresh workhub databases.
// It reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(); if repository code references a column that
// doesn't exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration to migrations.go
//  2. Update SchemaSQL here
//  3. Keep the migration's end state identical to this schema
//
// Timestamps are stored as DATETIME in UTC. JSON maps (metadata, payload,
// config, content) are stored as TEXT and never NULL.
const SchemaSQL = `
-- Plans (top of the work hierarchy)
CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	created_by TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_workspace ON plans(workspace_id);

-- Todos (optionally inside a plan, optionally nested under another todo)
CREATE TABLE IF NOT EXISTS todos (
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
);

CREATE INDEX IF NOT EXISTS idx_todos_workspace ON todos(workspace_id);
CREATE INDEX IF NOT EXISTS idx_todos_plan ON todos(plan_id);
CREATE INDEX IF NOT EXISTS idx_todos_parent ON todos(parent_todo_id);

-- Tasks (leaf unit of work, always under a todo)
CREATE TABLE IF NOT EXISTS tasks (
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
);

CREATE INDEX IF NOT EXISTS idx_tasks_workspace ON tasks(workspace_id);
CREATE INDEX IF NOT EXISTS idx_tasks_todo ON tasks(todo_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);

-- Execution runs (one attempt at executing a task)
CREATE TABLE IF NOT EXISTS execution_runs (
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
);

CREATE INDEX IF NOT EXISTS idx_runs_task ON execution_runs(task_id, started_at);

-- Execution events (append-only, dense per-run sequence)
CREATE TABLE IF NOT EXISTS execution_events (
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
);

-- Guardrails (rules attached to a task, todo or plan)
CREATE TABLE IF NOT EXISTS guardrails (
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
);

CREATE INDEX IF NOT EXISTS idx_guardrails_entity ON guardrails(workspace_id, entity_type, entity_id);

-- Agent and workflow definitions with fork lineage
CREATE TABLE IF NOT EXISTS agent_configs (
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
);

CREATE INDEX IF NOT EXISTS idx_agent_configs_kind ON agent_configs(workspace_id, kind);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
