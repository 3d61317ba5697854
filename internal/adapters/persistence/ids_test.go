package persistence

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	gen := NewUUIDGenerator()

	id := gen.NewID("task")
	if !strings.HasPrefix(id, "TASK-") {
		t.Fatalf("expected TASK- prefix, got %q", id)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(id, "TASK-")); err != nil {
		t.Errorf("expected uuid suffix, got %q: %v", id, err)
	}

	if gen.NewID("task") == id {
		t.Error("expected distinct ids")
	}

	bare := gen.NewID("")
	if _, err := uuid.Parse(bare); err != nil {
		t.Errorf("expected bare uuid, got %q", bare)
	}
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &FixedClock{T: start}

	if !clock.Now().Equal(start) {
		t.Errorf("expected %v, got %v", start, clock.Now())
	}
	clock.Advance(time.Minute)
	if !clock.Now().Equal(start.Add(time.Minute)) {
		t.Errorf("expected advanced clock, got %v", clock.Now())
	}
}

func TestSystemClock_IsUTC(t *testing.T) {
	if loc := NewSystemClock().Now().Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}
