// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test files;
// use setupTestDB() and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/workhub/internal/db"
)

const testWorkspace = "ws-1"

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection: each :memory: connection is a separate database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedPlan inserts a test plan and returns its ID.
func seedPlan(t *testing.T, db *sql.DB, id, ownerID string) string {
	t.Helper()
	if id == "" {
		id = "PLAN-001"
	}
	if ownerID == "" {
		ownerID = "user-1"
	}
	_, err := db.Exec(
		`INSERT INTO plans (id, workspace_id, title, created_by, owner_id, metadata, created_at, updated_at)
		VALUES (?, ?, 'Test Plan', ?, ?, '{}', ?, ?)`,
		id, testWorkspace, ownerID, ownerID, testNow, testNow,
	)
	if err != nil {
		t.Fatalf("failed to seed plan: %v", err)
	}
	return id
}

// seedTodo inserts a test todo and returns its ID. planID and parentID may be empty.
func seedTodo(t *testing.T, db *sql.DB, id, planID, parentID string) string {
	t.Helper()
	if id == "" {
		id = "TODO-001"
	}
	var plan, parent sql.NullString
	if planID != "" {
		plan = sql.NullString{String: planID, Valid: true}
	}
	if parentID != "" {
		parent = sql.NullString{String: parentID, Valid: true}
	}
	_, err := db.Exec(
		`INSERT INTO todos (id, workspace_id, plan_id, parent_todo_id, title, created_by, owner_id, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'Test Todo', 'user-1', 'user-1', '{}', ?, ?)`,
		id, testWorkspace, plan, parent, testNow, testNow,
	)
	if err != nil {
		t.Fatalf("failed to seed todo: %v", err)
	}
	return id
}

// seedTask inserts a test task and returns its ID.
func seedTask(t *testing.T, db *sql.DB, id, todoID, status string) string {
	t.Helper()
	if id == "" {
		id = "TASK-001"
	}
	if status == "" {
		status = "todo"
	}
	_, err := db.Exec(
		`INSERT INTO tasks (id, workspace_id, todo_id, title, status, created_by, metadata, created_at, updated_at)
		VALUES (?, ?, ?, 'Test Task', ?, 'user-1', '{}', ?, ?)`,
		id, testWorkspace, todoID, status, testNow, testNow,
	)
	if err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return id
}

// seedRun inserts a test execution run and returns its ID.
func seedRun(t *testing.T, db *sql.DB, id, todoID, taskID, status string, startedAt time.Time) string {
	t.Helper()
	if id == "" {
		id = "RUN-001"
	}
	_, err := db.Exec(
		`INSERT INTO execution_runs (id, workspace_id, todo_id, task_id, mode, status, started_by, started_at, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'manual', ?, 'user-1', ?, '{}', ?, ?)`,
		id, testWorkspace, todoID, taskID, status, startedAt, startedAt, startedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}
	return id
}
