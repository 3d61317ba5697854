package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/workhub/internal/adapters/persistence"
	"github.com/example/workhub/internal/adapters/sqlite"
	"github.com/example/workhub/internal/app"
	"github.com/example/workhub/internal/db"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

var (
	owner    = primary.Actor{UserID: "alice", Role: primary.RoleMember, WorkspaceID: "ws-1"}
	stranger = primary.Actor{UserID: "mallory", Role: primary.RoleMember, WorkspaceID: "ws-1"}
	admin    = primary.Actor{UserID: "root", Role: primary.RoleAdmin, WorkspaceID: "ws-1"}
	outsider = primary.Actor{UserID: "alice", Role: primary.RoleOwner, WorkspaceID: "ws-2"}
)

type harness struct {
	svc   *app.WorkServiceImpl
	clock *persistence.FixedClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithStore(t, nil)
}

// newHarnessWithStore builds a harness whose store is passed through wrap first.
func newHarnessWithStore(t *testing.T, wrap func(secondary.Store) secondary.Store) *harness {
	t.Helper()

	database, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	var store secondary.Store = sqlite.NewStore(database)
	if wrap != nil {
		store = wrap(store)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := &persistence.FixedClock{T: testNow}
	svc := app.NewWorkService(app.Deps{
		Store: store,
		Clock: clock,
		IDs:   persistence.NewUUIDGenerator(),
	})
	return &harness{svc: svc, clock: clock}
}

// fixture is a plan with one todo and one task, all created by owner.
type fixture struct {
	plan *primary.Plan
	todo *primary.Todo
	task *primary.Task
}

func (h *harness) seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	p, err := h.svc.CreatePlan(ctx, owner, primary.CreatePlanRequest{Title: "Launch"})
	require.NoError(t, err)
	td, err := h.svc.CreateTodo(ctx, owner, primary.CreateTodoRequest{PlanID: p.ID, Title: "Write docs"})
	require.NoError(t, err)
	tk, err := h.svc.CreateTask(ctx, owner, primary.CreateTaskRequest{TodoID: td.ID, Title: "Draft README"})
	require.NoError(t, err)
	return fixture{plan: p, todo: td, task: tk}
}

func (h *harness) guardrail(t *testing.T, entityType, entityID, category string, config map[string]any) *primary.Guardrail {
	t.Helper()
	g, err := h.svc.CreateGuardrail(context.Background(), owner, primary.CreateGuardrailRequest{
		EntityType: entityType,
		EntityID:   entityID,
		Name:       category + " check",
		Category:   category,
		Config:     config,
	})
	require.NoError(t, err)
	return g
}

func ptr[T any](v T) *T { return &v }

// failingAppendStore rejects every event append made inside a transaction.
type failingAppendStore struct {
	secondary.Store
	err error
}

func (s *failingAppendStore) RunInTransaction(ctx context.Context, fn func(tx secondary.Transaction) error) error {
	return s.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		return fn(failingAppendTx{Transaction: tx, err: s.err})
	})
}

type failingAppendTx struct {
	secondary.Transaction
	err error
}

func (tx failingAppendTx) Events() secondary.EventRepository {
	return failingEvents{EventRepository: tx.Transaction.Events(), err: tx.err}
}

type failingEvents struct {
	secondary.EventRepository
	err error
}

func (e failingEvents) Append(ctx context.Context, event *secondary.EventRecord) error {
	return e.err
}
