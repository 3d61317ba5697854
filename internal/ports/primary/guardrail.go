package primary

import (
	"context"
	"time"
)

// GuardrailService defines the primary port for guardrail configuration.
type GuardrailService interface {
	// CreateGuardrail attaches a guardrail to a task, todo or plan.
	CreateGuardrail(ctx context.Context, actor Actor, req CreateGuardrailRequest) (*Guardrail, error)

	// ListGuardrails lists the guardrails attached to one entity.
	ListGuardrails(ctx context.Context, actor Actor, entityType, entityID string) ([]*Guardrail, error)

	// SetGuardrailActive enables or disables a guardrail.
	SetGuardrailActive(ctx context.Context, actor Actor, guardrailID string, active bool) (*Guardrail, error)
}

// CreateGuardrailRequest contains parameters for creating a guardrail.
type CreateGuardrailRequest struct {
	EntityType string // task, todo, plan
	EntityID   string
	Name       string
	Category   string // scope, quality, safety, approval
	Active     *bool  // Optional, defaults to true
	Config     map[string]any
}

// Guardrail represents a guardrail at the port boundary.
type Guardrail struct {
	ID         string
	EntityType string
	EntityID   string
	Name       string
	Category   string
	Active     bool
	Config     map[string]any
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
