package task

import (
	"testing"
	"time"

	"github.com/example/workhub/internal/apperr"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"todo to planned", StatusTodo, StatusPlanned, true},
		{"todo to in_progress", StatusTodo, StatusInProgress, true},
		{"todo to deferred", StatusTodo, StatusDeferred, true},
		{"todo to cancelled", StatusTodo, StatusCancelled, true},
		{"todo to done skips work", StatusTodo, StatusDone, false},
		{"todo to blocked", StatusTodo, StatusBlocked, false},
		{"planned to blocked", StatusPlanned, StatusBlocked, true},
		{"planned to done", StatusPlanned, StatusDone, false},
		{"in_progress to done", StatusInProgress, StatusDone, true},
		{"in_progress to todo regresses", StatusInProgress, StatusTodo, false},
		{"blocked to planned", StatusBlocked, StatusPlanned, true},
		{"blocked to done", StatusBlocked, StatusDone, false},
		{"deferred to planned", StatusDeferred, StatusPlanned, true},
		{"deferred to in_progress", StatusDeferred, StatusInProgress, false},
		{"done to in_progress", StatusDone, StatusInProgress, false},
		{"cancelled to todo", StatusCancelled, StatusTodo, false},
		{"done to done", StatusDone, StatusDone, true},
		{"cancelled to cancelled", StatusCancelled, StatusCancelled, true},
		{"unknown source", Status("archived"), StatusTodo, false},
		{"unknown target", StatusTodo, Status("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanTransition_FullGrid(t *testing.T) {
	declared := map[[2]Status]bool{}
	for from, targets := range transitions {
		for _, to := range targets {
			declared[[2]Status{from, to}] = true
		}
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := from == to || declared[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
			if from.IsTerminal() && from != to && CanTransition(from, to) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}

func TestValidateTransition(t *testing.T) {
	t.Run("legal transition returns nil", func(t *testing.T) {
		if err := ValidateTransition(StatusTodo, StatusInProgress); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("illegal transition is a conflict naming both states", func(t *testing.T) {
		err := ValidateTransition(StatusTodo, StatusDone)
		if !apperr.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
		want := "cannot transition task from todo to done"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("terminal source mentions terminality", func(t *testing.T) {
		err := ValidateTransition(StatusCancelled, StatusPlanned)
		want := "cannot transition task from cancelled to planned: cancelled is terminal"
		if err == nil || err.Error() != want {
			t.Errorf("Error() = %v, want %q", err, want)
		}
	})
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("blocked"); err != nil || s != StatusBlocked {
		t.Errorf("ParseStatus(blocked) = %q, %v", s, err)
	}
	if _, err := ParseStatus("complete"); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}

func TestApplyTransition(t *testing.T) {
	earlier := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)

	t.Run("first start sets started_at", func(t *testing.T) {
		got := ApplyTransition(StatusTodo, StatusInProgress, Timestamps{}, now)
		if got.StartedAt == nil || !got.StartedAt.Equal(now) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, now)
		}
		if got.CompletedAt != nil {
			t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
		}
	})

	t.Run("restart keeps original started_at", func(t *testing.T) {
		got := ApplyTransition(StatusBlocked, StatusInProgress, Timestamps{StartedAt: &earlier}, now)
		if !got.StartedAt.Equal(earlier) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, earlier)
		}
	})

	t.Run("done sets completed_at and preserves started_at", func(t *testing.T) {
		got := ApplyTransition(StatusInProgress, StatusDone, Timestamps{StartedAt: &earlier}, now)
		if !got.StartedAt.Equal(earlier) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, earlier)
		}
		if got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
			t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, now)
		}
	})

	t.Run("done back-fills missing started_at", func(t *testing.T) {
		got := ApplyTransition(StatusInProgress, StatusDone, Timestamps{}, now)
		if got.StartedAt == nil || !got.StartedAt.Equal(now) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, now)
		}
	})

	t.Run("leaving done clears completed_at", func(t *testing.T) {
		got := ApplyTransition(StatusInProgress, StatusBlocked, Timestamps{StartedAt: &earlier, CompletedAt: &earlier}, now)
		if got.CompletedAt != nil {
			t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
		}
		if got.StartedAt == nil {
			t.Error("StartedAt must never be cleared")
		}
	})

	t.Run("self transition is a no-op", func(t *testing.T) {
		current := Timestamps{StartedAt: &earlier, CompletedAt: &earlier}
		got := ApplyTransition(StatusDone, StatusDone, current, now)
		if got.CompletedAt != current.CompletedAt || got.StartedAt != current.StartedAt {
			t.Errorf("self transition changed timestamps: %+v", got)
		}
	})
}
