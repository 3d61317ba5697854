// Package run contains the pure business logic for execution run status changes.
// Guards are pure functions that evaluate preconditions without side effects.
package run

import (
	"fmt"

	"github.com/example/workhub/internal/apperr"
)

// Status is the lifecycle state of an execution run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusBlocked    Status = "blocked"
)

// Mode controls how much autonomy the executor of a run has.
type Mode string

const (
	ModeManual     Mode = "manual"
	ModeSubAgentic Mode = "sub_agentic"
	ModeFullAuto   Mode = "full_auto"
)

// ParseMode validates a raw mode; empty means manual.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(raw); m {
	case "":
		return ModeManual, nil
	case ModeManual, ModeSubAgentic, ModeFullAuto:
		return m, nil
	default:
		return "", apperr.Validation("invalid run mode %q", raw)
	}
}

// IsTerminal reports whether the run can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to a conflict error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.Conflict("%s", r.Reason)
}

// StatusContext provides context for run status guards.
type StatusContext struct {
	RunID  string
	Status Status
}

// CanPause evaluates whether a run can be paused.
// Rules:
// - Status must be "in_progress"
func CanPause(ctx StatusContext) GuardResult {
	if ctx.Status != StatusInProgress {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only pause in_progress runs (run %s is %s)", ctx.RunID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanResume evaluates whether a run can be resumed.
// Rules:
// - Status must be "paused" or "blocked"
func CanResume(ctx StatusContext) GuardResult {
	if ctx.Status != StatusPaused && ctx.Status != StatusBlocked {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only resume paused or blocked runs (run %s is %s)", ctx.RunID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanSteer evaluates whether a steering instruction may be sent to a run.
// Rules:
// - Run must not be terminal
func CanSteer(ctx StatusContext) GuardResult {
	if ctx.Status.IsTerminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s is already %s", ctx.RunID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanCancel evaluates whether a run can be cancelled.
// Rules:
// - Run must not be terminal
func CanCancel(ctx StatusContext) GuardResult {
	return CanSteer(ctx)
}
