package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/workhub/internal/ports/primary"
)

// GuardrailAdapter is a thin adapter that translates CLI operations to GuardrailService calls.
type GuardrailAdapter struct {
	service primary.GuardrailService
	actor   primary.Actor
	out     io.Writer
}

// NewGuardrailAdapter creates a new GuardrailAdapter acting as actor.
func NewGuardrailAdapter(service primary.GuardrailService, actor primary.Actor, out io.Writer) *GuardrailAdapter {
	return &GuardrailAdapter{service: service, actor: actor, out: out}
}

// Create attaches a guardrail.
func (a *GuardrailAdapter) Create(ctx context.Context, req primary.CreateGuardrailRequest) (*primary.Guardrail, error) {
	g, err := a.service.CreateGuardrail(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created %s guardrail %s on %s %s\n", g.Category, g.ID, g.EntityType, g.EntityID)
	return g, nil
}

// List lists the guardrails attached to an entity.
func (a *GuardrailAdapter) List(ctx context.Context, entityType, entityID string) error {
	list, err := a.service.ListGuardrails(ctx, a.actor, entityType, entityID)
	if err != nil {
		return fmt.Errorf("failed to list guardrails: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No guardrails found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-41s %-9s %-8s %s\n", "ID", "CATEGORY", "ACTIVE", "NAME")
	fmt.Fprintln(a.out, rule)
	for _, g := range list {
		active := green.Sprint("yes")
		if !g.Active {
			active = faint.Sprint("no")
		}
		fmt.Fprintf(a.out, "%-41s %-9s %-8s %s\n", g.ID, g.Category, active, g.Name)
	}
	fmt.Fprintln(a.out)
	return nil
}

// SetActive enables or disables a guardrail.
func (a *GuardrailAdapter) SetActive(ctx context.Context, guardrailID string, active bool) error {
	g, err := a.service.SetGuardrailActive(ctx, a.actor, guardrailID, active)
	if err != nil {
		return err
	}
	state := "enabled"
	if !g.Active {
		state = "disabled"
	}
	fmt.Fprintf(a.out, "✓ Guardrail %s %s\n", g.ID, state)
	return nil
}
