package permission

import "testing"

func TestCanPerformTodoAction(t *testing.T) {
	base := Facts{
		TodoCreatorUserID:  "creator",
		TodoOwnerUserID:    "owner",
		TaskAssigneeUserID: "assignee",
	}
	as := func(actor string) Facts {
		f := base
		f.ActorUserID = actor
		return f
	}

	tests := []struct {
		name   string
		action Action
		facts  Facts
		want   bool
	}{
		{"creator can edit todo", ActionTodoEdit, as("creator"), true},
		{"owner can edit todo", ActionTodoEdit, as("owner"), true},
		{"assignee cannot edit todo", ActionTodoEdit, as("assignee"), false},
		{"stranger cannot edit todo", ActionTodoEdit, as("stranger"), false},

		{"creator can reassign todo", ActionTodoReassign, as("creator"), true},
		{"owner can reassign todo", ActionTodoReassign, as("owner"), true},
		{"assignee cannot reassign todo", ActionTodoReassign, as("assignee"), false},

		{"owner can close todo", ActionTodoClose, as("owner"), true},
		{"creator alone cannot close todo", ActionTodoClose, as("creator"), false},
		{"assignee cannot close todo", ActionTodoClose, as("assignee"), false},

		{"creator can update task", ActionTaskUpdate, as("creator"), true},
		{"owner can update task", ActionTaskUpdate, as("owner"), true},
		{"assignee can update task", ActionTaskUpdate, as("assignee"), true},
		{"stranger cannot update task", ActionTaskUpdate, as("stranger"), false},

		{"creator can reassign task", ActionTaskReassign, as("creator"), true},
		{"owner can reassign task", ActionTaskReassign, as("owner"), true},
		{"assignee cannot reassign task", ActionTaskReassign, as("assignee"), false},

		{"unknown action denied", Action("todo_delete"), as("owner"), false},
		{"admin allowed anything", Action("todo_delete"), Facts{ActorUserID: "root", IsAdmin: true}, true},
		{"empty actor never matches empty facts", ActionTodoEdit, Facts{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPerformTodoAction(tt.action, tt.facts); got != tt.want {
				t.Errorf("CanPerformTodoAction(%s) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestCanPerformTodoAction_AdminMonotonic(t *testing.T) {
	actions := []Action{ActionTodoEdit, ActionTodoReassign, ActionTodoClose, ActionTaskUpdate, ActionTaskReassign, Action("bogus")}
	actors := []string{"", "creator", "owner", "assignee", "stranger"}

	for _, action := range actions {
		for _, actor := range actors {
			f := Facts{
				ActorUserID:        actor,
				TodoCreatorUserID:  "creator",
				TodoOwnerUserID:    "owner",
				TaskAssigneeUserID: "assignee",
			}
			plain := CanPerformTodoAction(action, f)
			f.IsAdmin = true
			admin := CanPerformTodoAction(action, f)
			if plain && !admin {
				t.Errorf("action %s for actor %q allowed without admin but denied with admin", action, actor)
			}
		}
	}
}

func TestCheck(t *testing.T) {
	t.Run("allowed result returns nil error", func(t *testing.T) {
		result := Check(ActionTodoEdit, Facts{ActorUserID: "u1", TodoCreatorUserID: "u1"})
		if err := result.Error(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("denied result carries reason", func(t *testing.T) {
		result := Check(ActionTodoClose, Facts{ActorUserID: "u1", TodoCreatorUserID: "u1", TodoOwnerUserID: "u2"})
		if result.Allowed {
			t.Fatal("expected close by creator-only to be denied")
		}
		want := "user u1 is not allowed to perform todo_close"
		if result.Reason != want {
			t.Errorf("Reason = %q, want %q", result.Reason, want)
		}
	})
}
