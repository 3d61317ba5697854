// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/example/workhub/internal/ports/secondary"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repositories binds every repository to one Querier.
type repositories struct {
	q Querier
}

func (r repositories) Plans() secondary.PlanRepository           { return NewPlanRepository(r.q) }
func (r repositories) Todos() secondary.TodoRepository           { return NewTodoRepository(r.q) }
func (r repositories) Tasks() secondary.TaskRepository           { return NewTaskRepository(r.q) }
func (r repositories) Runs() secondary.RunRepository             { return NewRunRepository(r.q) }
func (r repositories) Events() secondary.EventRepository         { return NewEventRepository(r.q) }
func (r repositories) Guardrails() secondary.GuardrailRepository { return NewGuardrailRepository(r.q) }
func (r repositories) AgentConfigs() secondary.AgentConfigRepository {
	return NewAgentConfigRepository(r.q)
}

// Store implements secondary.Store over a SQLite connection pool.
type Store struct {
	repositories
	db         *sql.DB
	logger     *slog.Logger
	newBackoff func() backoff.BackOff
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithBeginBackoff overrides the retry policy for beginning transactions.
// The factory must return a fresh BackOff on every call.
func WithBeginBackoff(factory func() backoff.BackOff) StoreOption {
	return func(s *Store) { s.newBackoff = factory }
}

// NewStore wraps an open database.
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{
		repositories: repositories{q: db},
		db:           db,
		logger:       slog.Default(),
		newBackoff:   defaultBeginBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const beginMaxElapsed = 10 * time.Second

func defaultBeginBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxElapsedTime = beginMaxElapsed
	return bo
}

// RunInTransaction executes fn within one database transaction.
//
// The DSN sets _txlock=immediate, so BeginTx takes the write lock up front and
// two writers never both read the same MAX(sequence). SQLITE_BUSY while
// beginning is retried with exponential backoff.
//
// If fn returns an error or panics the transaction is rolled back; a panic is
// re-raised after the rollback.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx secondary.Transaction) error) error {
	var tx *sql.Tx
	begin := func() error {
		t, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			if isBusyError(err) {
				s.logger.Debug("database busy, retrying begin", "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		tx = t
		return nil
	}
	if err := backoff.Retry(begin, backoff.WithContext(s.newBackoff(), ctx)); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&txStorage{repositories{q: tx}}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// txStorage exposes repositories bound to an open transaction.
type txStorage struct {
	repositories
}

// isBusyError reports whether err is SQLITE_BUSY or SQLITE_LOCKED.
func isBusyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// Ensure Store implements the interface
var _ secondary.Store = (*Store)(nil)
var _ secondary.Transaction = (*txStorage)(nil)
