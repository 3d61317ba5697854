// Package db opens the workhub SQLite database and owns its schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver used for workhub databases.
const DriverName = "sqlite3"

// DSN builds the connection string for a database file.
// Transactions begin IMMEDIATE so the writer lock is taken before the first read,
// which keeps the per-run event sequence computation race free.
func DSN(path string) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	params.Set("_journal_mode", "WAL")
	return "file:" + path + "?" + params.Encode()
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(ctx, database, logger); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// OpenMemory opens a private in-memory database with the full schema.
// The pool is pinned to one connection because every :memory: connection
// gets its own database.
func OpenMemory(ctx context.Context) (*sql.DB, error) {
	database, err := sql.Open(DriverName, "file::memory:?_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	database.SetMaxOpenConns(1)

	if err := InitSchema(ctx, database, slog.New(slog.DiscardHandler)); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

// DefaultPath returns ~/.workhub/workhub.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".workhub", "workhub.db"), nil
}
