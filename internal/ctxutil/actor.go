// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting identity.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// OperationKey is the context key for the façade operation name.
type OperationKey struct{}

// ActorInfo is the identity carried through a request for logging and tracing.
type ActorInfo struct {
	UserID      string
	Role        string
	WorkspaceID string
}

// WithActor returns a context with the actor embedded.
func WithActor(ctx context.Context, info ActorInfo) context.Context {
	return context.WithValue(ctx, ActorKey{}, info)
}

// ActorFromContext returns the actor from context, or the zero value if not set.
func ActorFromContext(ctx context.Context) ActorInfo {
	if v, ok := ctx.Value(ActorKey{}).(ActorInfo); ok {
		return v
	}
	return ActorInfo{}
}

// WithOperation returns a context naming the operation being served.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, OperationKey{}, op)
}

// OperationFromContext returns the operation name, or empty string if not set.
func OperationFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(OperationKey{}).(string); ok {
		return v
	}
	return ""
}

// LogAttrs returns slog-style key/value pairs describing the request in ctx.
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	if op := OperationFromContext(ctx); op != "" {
		attrs = append(attrs, "op", op)
	}
	info := ActorFromContext(ctx)
	if info.UserID != "" {
		attrs = append(attrs, "actor", info.UserID)
	}
	if info.WorkspaceID != "" {
		attrs = append(attrs, "workspace", info.WorkspaceID)
	}
	return attrs
}
