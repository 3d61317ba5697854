package ctxutil

import (
	"context"
	"testing"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), ActorInfo{UserID: "u1", Role: "admin", WorkspaceID: "ws"})

	got := ActorFromContext(ctx)
	if got.UserID != "u1" || got.WorkspaceID != "ws" || got.Role != "admin" {
		t.Errorf("unexpected actor %+v", got)
	}
}

func TestActorFromContext_Unset(t *testing.T) {
	if got := ActorFromContext(context.Background()); got != (ActorInfo{}) {
		t.Errorf("expected zero value, got %+v", got)
	}
}

func TestLogAttrs(t *testing.T) {
	ctx := WithOperation(context.Background(), "StartTask")
	ctx = WithActor(ctx, ActorInfo{UserID: "u1", WorkspaceID: "ws"})

	attrs := LogAttrs(ctx)
	want := []any{"op", "StartTask", "actor", "u1", "workspace", "ws"}
	if len(attrs) != len(want) {
		t.Fatalf("LogAttrs = %v, want %v", attrs, want)
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Errorf("LogAttrs[%d] = %v, want %v", i, attrs[i], want[i])
		}
	}

	if len(LogAttrs(context.Background())) != 0 {
		t.Error("expected no attrs for bare context")
	}
}
