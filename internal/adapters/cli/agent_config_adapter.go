package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/workhub/internal/ports/primary"
)

// AgentConfigAdapter is a thin adapter that translates CLI operations to AgentConfigService calls.
type AgentConfigAdapter struct {
	service primary.AgentConfigService
	actor   primary.Actor
	out     io.Writer
}

// NewAgentConfigAdapter creates a new AgentConfigAdapter acting as actor.
func NewAgentConfigAdapter(service primary.AgentConfigService, actor primary.Actor, out io.Writer) *AgentConfigAdapter {
	return &AgentConfigAdapter{service: service, actor: actor, out: out}
}

// Put creates or updates a definition.
func (a *AgentConfigAdapter) Put(ctx context.Context, req primary.PutAgentConfigRequest) (*primary.AgentConfig, error) {
	cfg, err := a.service.PutAgentConfig(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Saved %s %s %q (v%d)\n", cfg.Kind, cfg.ID, cfg.Name, cfg.Version)
	return cfg, nil
}

// Fork copies a definition.
func (a *AgentConfigAdapter) Fork(ctx context.Context, req primary.ForkAgentConfigRequest) (*primary.AgentConfig, error) {
	cfg, err := a.service.ForkAgentConfig(ctx, a.actor, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Forked %s into %s %q\n", cfg.ParentID, cfg.ID, cfg.Name)
	return cfg, nil
}

// Detach stops a fork from tracking its parent.
func (a *AgentConfigAdapter) Detach(ctx context.Context, id string) error {
	cfg, err := a.service.DetachAgentConfig(ctx, a.actor, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ %s detached from %s\n", cfg.ID, cfg.ParentID)
	return nil
}

// List lists definitions, optionally of one kind.
func (a *AgentConfigAdapter) List(ctx context.Context, kind string) error {
	list, err := a.service.ListAgentConfigs(ctx, a.actor, kind)
	if err != nil {
		return fmt.Errorf("failed to list configs: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No configs found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-40s %-9s %-4s %-40s %s\n", "ID", "KIND", "VER", "PARENT", "NAME")
	fmt.Fprintln(a.out, rule)
	for _, c := range list {
		parent := orDash(c.ParentID)
		if c.Detached {
			parent += faint.Sprint(" (detached)")
		}
		fmt.Fprintf(a.out, "%-40s %-9s %-4d %-40s %s\n", c.ID, c.Kind, c.Version, parent, c.Name)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays a single definition.
func (a *AgentConfigAdapter) Show(ctx context.Context, id string) (*primary.AgentConfig, error) {
	cfg, err := a.service.GetAgentConfig(ctx, a.actor, id)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "\n%s:  %s\n", cfg.Kind, cfg.ID)
	fmt.Fprintf(a.out, "Name:     %s (v%d)\n", cfg.Name, cfg.Version)
	fmt.Fprintf(a.out, "Parent:   %s\n", orDash(cfg.ParentID))
	fmt.Fprintf(a.out, "Lineage:  %s\n", cfg.LineageRootID)
	if cfg.Detached {
		fmt.Fprintln(a.out, "Detached: yes")
	}
	writeMap(a.out, "Content", cfg.Content)
	fmt.Fprintln(a.out)
	return cfg, nil
}
