package primary

import (
	"context"
	"time"
)

// AgentConfigService defines the primary port for agent/workflow definitions.
// Only lineage bookkeeping is modeled; content is opaque.
type AgentConfigService interface {
	// ListAgentConfigs lists definitions, optionally filtered by kind.
	ListAgentConfigs(ctx context.Context, actor Actor, kind string) ([]*AgentConfig, error)

	// GetAgentConfig retrieves a definition by ID.
	GetAgentConfig(ctx context.Context, actor Actor, id string) (*AgentConfig, error)

	// PutAgentConfig creates a definition, or replaces the content of an existing one.
	PutAgentConfig(ctx context.Context, actor Actor, req PutAgentConfigRequest) (*AgentConfig, error)

	// ForkAgentConfig copies a definition and records its lineage.
	ForkAgentConfig(ctx context.Context, actor Actor, req ForkAgentConfigRequest) (*AgentConfig, error)

	// DetachAgentConfig stops a fork from tracking its parent.
	DetachAgentConfig(ctx context.Context, actor Actor, id string) (*AgentConfig, error)
}

// PutAgentConfigRequest contains parameters for creating or updating a definition.
type PutAgentConfigRequest struct {
	ID      string // Optional; empty creates a new definition
	Kind    string // agent or workflow
	Name    string
	Content map[string]any
}

// ForkAgentConfigRequest contains parameters for forking a definition.
type ForkAgentConfigRequest struct {
	SourceID string
	Name     string // Optional, defaults to "<source name> (fork)"
}

// AgentConfig represents an agent or workflow definition at the port boundary.
type AgentConfig struct {
	ID            string
	Kind          string
	Name          string
	Version       int
	Content       map[string]any
	ParentID      string
	LineageRootID string
	Detached      bool
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
