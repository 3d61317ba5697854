package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/workhub/internal/adapters/sqlite"
	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/ports/secondary"
)

func createGuardrail(t *testing.T, repo *sqlite.GuardrailRepository, id, entityType, entityID, category string, active bool) {
	t.Helper()
	err := repo.Create(context.Background(), &secondary.GuardrailRecord{
		ID:          id,
		WorkspaceID: testWorkspace,
		EntityType:  entityType,
		EntityID:    entityID,
		Name:        id,
		Category:    category,
		Active:      active,
		Config:      map[string]any{"violated": false},
		CreatedBy:   "user-1",
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	})
	if err != nil {
		t.Fatalf("Create guardrail %s failed: %v", id, err)
	}
}

func TestGuardrailRepository_ListForScopes(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewGuardrailRepository(db)
	ctx := context.Background()

	createGuardrail(t, repo, "GRD-1", "task", "TASK-001", "safety", true)
	createGuardrail(t, repo, "GRD-2", "todo", "TODO-001", "approval", true)
	createGuardrail(t, repo, "GRD-3", "plan", "PLAN-001", "quality", false)
	createGuardrail(t, repo, "GRD-4", "task", "TASK-999", "scope", true)

	scopes := []secondary.GuardrailScope{
		{EntityType: "task", EntityID: "TASK-001"},
		{EntityType: "todo", EntityID: "TODO-001"},
		{EntityType: "plan", EntityID: "PLAN-001"},
	}

	active, err := repo.ListForScopes(ctx, testWorkspace, scopes, true)
	if err != nil {
		t.Fatalf("ListForScopes failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active guardrails, got %d", len(active))
	}

	all, _ := repo.ListForScopes(ctx, testWorkspace, scopes, false)
	if len(all) != 3 {
		t.Errorf("expected 3 guardrails including inactive, got %d", len(all))
	}
	if all[0].Config["violated"] != false {
		t.Errorf("expected config to round-trip, got %v", all[0].Config)
	}

	none, _ := repo.ListForScopes(ctx, testWorkspace, nil, true)
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty slice for no scopes, got %v", none)
	}
}

func TestGuardrailRepository_SetActive(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewGuardrailRepository(db)
	ctx := context.Background()
	createGuardrail(t, repo, "GRD-1", "task", "TASK-001", "safety", true)

	if err := repo.SetActive(ctx, testWorkspace, "GRD-1", false, testNow); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	got, err := repo.GetByID(ctx, testWorkspace, "GRD-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Active {
		t.Error("expected guardrail to be inactive")
	}

	if err := repo.SetActive(ctx, "ws-other", "GRD-1", true, testNow); !apperr.IsNotFound(err) {
		t.Errorf("expected not found from other workspace, got %v", err)
	}
}
