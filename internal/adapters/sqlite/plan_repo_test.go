package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/workhub/internal/adapters/sqlite"
	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/ports/secondary"
)

func TestPlanRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPlanRepository(db)
	ctx := context.Background()

	plan := &secondary.PlanRecord{
		ID:          "PLAN-001",
		WorkspaceID: testWorkspace,
		Title:       "Ship v2",
		Description: "Everything for v2",
		CreatedBy:   "user-1",
		OwnerID:     "user-2",
		Metadata:    map[string]any{"priority": "high"},
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	if err := repo.Create(ctx, plan); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, testWorkspace, "PLAN-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Ship v2" {
		t.Errorf("expected title 'Ship v2', got %q", got.Title)
	}
	if got.OwnerID != "user-2" {
		t.Errorf("expected owner 'user-2', got %q", got.OwnerID)
	}
	if got.Metadata["priority"] != "high" {
		t.Errorf("expected metadata priority 'high', got %v", got.Metadata["priority"])
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("expected created_at %v, got %v", testNow, got.CreatedAt)
	}
}

func TestPlanRepository_GetByID_OtherWorkspaceIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	seedPlan(t, db, "PLAN-001", "")
	repo := sqlite.NewPlanRepository(db)

	_, err := repo.GetByID(context.Background(), "ws-other", "PLAN-001")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlanRepository_List(t *testing.T) {
	db := setupTestDB(t)
	seedPlan(t, db, "PLAN-001", "alice")
	seedPlan(t, db, "PLAN-002", "bob")
	repo := sqlite.NewPlanRepository(db)
	ctx := context.Background()

	all, err := repo.List(ctx, secondary.PlanFilters{WorkspaceID: testWorkspace})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 plans, got %d", len(all))
	}

	bobs, err := repo.List(ctx, secondary.PlanFilters{WorkspaceID: testWorkspace, OwnerID: "bob"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(bobs) != 1 || bobs[0].ID != "PLAN-002" {
		t.Errorf("expected only PLAN-002 for bob, got %v", bobs)
	}
}

func TestPlanRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	seedPlan(t, db, "PLAN-001", "")
	repo := sqlite.NewPlanRepository(db)
	ctx := context.Background()

	plan, err := repo.GetByID(ctx, testWorkspace, "PLAN-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	plan.Title = "Renamed"
	plan.Description = ""
	if err := repo.Update(ctx, plan); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, testWorkspace, "PLAN-001")
	if got.Title != "Renamed" {
		t.Errorf("expected title 'Renamed', got %q", got.Title)
	}
}

func TestPlanRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPlanRepository(db)

	err := repo.Update(context.Background(), &secondary.PlanRecord{ID: "PLAN-404", WorkspaceID: testWorkspace, Title: "x"})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
