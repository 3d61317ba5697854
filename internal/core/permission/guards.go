// Package permission contains the pure business logic deciding who may act on a todo or task.
// Guards are pure functions that evaluate preconditions without side effects.
package permission

import (
	"fmt"

	"github.com/example/workhub/internal/apperr"
)

// Action names an operation subject to ownership rules.
type Action string

const (
	ActionTodoEdit     Action = "todo_edit"
	ActionTodoReassign Action = "todo_reassign"
	ActionTodoClose    Action = "todo_close"
	ActionTaskUpdate   Action = "task_update"
	ActionTaskReassign Action = "task_reassign"
)

// Facts are the ownership facts an action is judged against.
// Empty strings mean the fact is absent.
type Facts struct {
	ActorUserID        string
	TodoCreatorUserID  string
	TodoOwnerUserID    string
	TaskAssigneeUserID string
	IsAdmin            bool
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.Permission("%s", r.Reason)
}

// CanPerformTodoAction evaluates whether the actor may perform action.
// Rules (first match wins):
// - Admins may do anything
// - todo_edit, todo_reassign: todo creator or current owner
// - todo_close: current owner only
// - task_update: todo creator, todo owner, or task assignee
// - task_reassign: todo creator or owner
// - Unknown actions are denied
func CanPerformTodoAction(action Action, f Facts) bool {
	if f.IsAdmin {
		return true
	}

	isCreator := matches(f.ActorUserID, f.TodoCreatorUserID)
	isOwner := matches(f.ActorUserID, f.TodoOwnerUserID)

	switch action {
	case ActionTodoEdit, ActionTodoReassign:
		return isCreator || isOwner
	case ActionTodoClose:
		// Ownership may have moved away from the creator.
		return isOwner
	case ActionTaskUpdate:
		return isCreator || isOwner || matches(f.ActorUserID, f.TaskAssigneeUserID)
	case ActionTaskReassign:
		return isCreator || isOwner
	default:
		return false
	}
}

// Check wraps CanPerformTodoAction with a reason suitable for a permission error.
func Check(action Action, f Facts) GuardResult {
	if CanPerformTodoAction(action, f) {
		return GuardResult{Allowed: true}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("user %s is not allowed to perform %s", displayActor(f.ActorUserID), action),
	}
}

func matches(actor, fact string) bool {
	return actor != "" && actor == fact
}

func displayActor(id string) string {
	if id == "" {
		return "(anonymous)"
	}
	return id
}
