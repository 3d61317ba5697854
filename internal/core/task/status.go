// Package task contains the pure business logic for task status operations.
// The state machine and aggregate derivation are pure functions without side effects.
package task

import (
	"time"

	"github.com/example/workhub/internal/apperr"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusDeferred   Status = "deferred"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every status in declaration order.
var AllStatuses = []Status{
	StatusTodo, StatusPlanned, StatusInProgress, StatusBlocked,
	StatusDone, StatusDeferred, StatusCancelled,
}

// transitions is the declared edge set. Self-transitions are handled separately.
var transitions = map[Status][]Status{
	StatusTodo:       {StatusPlanned, StatusInProgress, StatusDeferred, StatusCancelled},
	StatusPlanned:    {StatusInProgress, StatusBlocked, StatusDeferred, StatusCancelled},
	StatusInProgress: {StatusDone, StatusBlocked, StatusDeferred, StatusCancelled},
	StatusBlocked:    {StatusPlanned, StatusInProgress, StatusDeferred, StatusCancelled},
	StatusDeferred:   {StatusPlanned, StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the seven task statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusPlanned, StatusInProgress, StatusBlocked,
		StatusDone, StatusDeferred, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", apperr.Validation("invalid task status %q", raw)
	}
	return s, nil
}

// CanTransition reports whether from → to is legal.
// A status transitioning to itself is always legal.
func CanTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a conflict error naming both states when from → to is illegal.
func ValidateTransition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	if from.IsTerminal() {
		return apperr.Conflict("cannot transition task from %s to %s: %s is terminal", from, to, from)
	}
	return apperr.Conflict("cannot transition task from %s to %s", from, to)
}

// Timestamps holds the lifecycle timestamps owned by the state machine.
type Timestamps struct {
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// ApplyTransition returns the timestamps after moving from → to at now.
// Rules:
// - StartedAt is set on first entry into in_progress and never cleared
// - Entering done sets CompletedAt and back-fills a missing StartedAt
// - Any other transition clears CompletedAt
// - A self-transition leaves everything unchanged
func ApplyTransition(from, to Status, current Timestamps, now time.Time) Timestamps {
	if from == to {
		return current
	}

	next := Timestamps{StartedAt: current.StartedAt}
	switch to {
	case StatusInProgress:
		if next.StartedAt == nil {
			next.StartedAt = timePtr(now)
		}
	case StatusDone:
		if next.StartedAt == nil {
			next.StartedAt = timePtr(now)
		}
		next.CompletedAt = timePtr(now)
	}
	return next
}

func timePtr(t time.Time) *time.Time {
	return &t
}
