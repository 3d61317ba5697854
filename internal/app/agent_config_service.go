package app

import (
	"context"
	"strings"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/core/lineage"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

// AgentConfigServiceImpl implements the AgentConfigService interface.
type AgentConfigServiceImpl struct {
	deps Deps
}

// NewAgentConfigService creates a new AgentConfigService with injected dependencies.
func NewAgentConfigService(deps Deps) *AgentConfigServiceImpl {
	return &AgentConfigServiceImpl{deps: deps}
}

// ListAgentConfigs lists definitions, optionally filtered by kind.
func (s *AgentConfigServiceImpl) ListAgentConfigs(ctx context.Context, actor primary.Actor, kind string) ([]*primary.AgentConfig, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if kind != "" {
		if _, err := lineage.ParseKind(kind); err != nil {
			return nil, err
		}
	}

	records, err := s.deps.Store.AgentConfigs().List(ctx, actor.WorkspaceID, kind)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.AgentConfig, len(records))
	for i, r := range records {
		out[i] = recordToAgentConfig(r)
	}
	return out, nil
}

// GetAgentConfig retrieves a definition by ID.
func (s *AgentConfigServiceImpl) GetAgentConfig(ctx context.Context, actor primary.Actor, id string) (*primary.AgentConfig, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	record, err := s.deps.Store.AgentConfigs().GetByID(ctx, actor.WorkspaceID, id)
	if err != nil {
		return nil, err
	}
	return recordToAgentConfig(record), nil
}

// PutAgentConfig creates a definition at version 1, or bumps the version of an
// existing one when its name or content changes.
func (s *AgentConfigServiceImpl) PutAgentConfig(ctx context.Context, actor primary.Actor, req primary.PutAgentConfigRequest) (*primary.AgentConfig, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	kind, err := lineage.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("config name is required")
	}
	content := req.Content
	if content == nil {
		content = map[string]any{}
	}

	var result *secondary.AgentConfigRecord
	err = s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		now := s.deps.Clock.Now()
		if req.ID == "" {
			id := s.deps.IDs.NewID(prefixConfig)
			result = &secondary.AgentConfigRecord{
				ID:            id,
				WorkspaceID:   actor.WorkspaceID,
				Kind:          string(kind),
				Name:          req.Name,
				Version:       1,
				Content:       content,
				LineageRootID: id,
				CreatedBy:     actor.UserID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			return tx.AgentConfigs().Create(ctx, result)
		}

		existing, err := tx.AgentConfigs().GetByID(ctx, actor.WorkspaceID, req.ID)
		if err != nil {
			return err
		}
		if err := canManageConfig(actor, existing); err != nil {
			return err
		}
		if existing.Kind != string(kind) {
			return apperr.Validation("config %s is a %s, not a %s", existing.ID, existing.Kind, kind)
		}
		if existing.Name == req.Name && sameMap(existing.Content, content) {
			return apperr.Conflict("put does not change config %s", existing.ID)
		}

		existing.Name = req.Name
		existing.Content = content
		existing.Version++
		existing.UpdatedAt = now
		if err := tx.AgentConfigs().Update(ctx, existing); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToAgentConfig(result), nil
}

// ForkAgentConfig copies a definition into a new one owned by the actor.
func (s *AgentConfigServiceImpl) ForkAgentConfig(ctx context.Context, actor primary.Actor, req primary.ForkAgentConfigRequest) (*primary.AgentConfig, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var result *secondary.AgentConfigRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		source, err := tx.AgentConfigs().GetByID(ctx, actor.WorkspaceID, req.SourceID)
		if err != nil {
			return err
		}

		fork := lineage.Fork(toNode(source), s.deps.IDs.NewID(prefixConfig), strings.TrimSpace(req.Name))
		now := s.deps.Clock.Now()
		result = &secondary.AgentConfigRecord{
			ID:            fork.ID,
			WorkspaceID:   actor.WorkspaceID,
			Kind:          string(fork.Kind),
			Name:          fork.Name,
			Version:       fork.Version,
			Content:       fork.Content,
			ParentID:      fork.ParentID,
			LineageRootID: fork.LineageRootID,
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if result.Content == nil {
			result.Content = map[string]any{}
		}
		return tx.AgentConfigs().Create(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	return recordToAgentConfig(result), nil
}

// DetachAgentConfig marks a fork as no longer tracking its parent.
// Parent and root ids are kept for history.
func (s *AgentConfigServiceImpl) DetachAgentConfig(ctx context.Context, actor primary.Actor, id string) (*primary.AgentConfig, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var result *secondary.AgentConfigRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		record, err := tx.AgentConfigs().GetByID(ctx, actor.WorkspaceID, id)
		if err != nil {
			return err
		}
		if err := canManageConfig(actor, record); err != nil {
			return err
		}
		if err := lineage.CanDetach(toNode(record)).Error(); err != nil {
			return err
		}

		record.Detached = true
		record.UpdatedAt = s.deps.Clock.Now()
		if err := tx.AgentConfigs().Update(ctx, record); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToAgentConfig(result), nil
}

func canManageConfig(actor primary.Actor, r *secondary.AgentConfigRecord) error {
	if actor.IsAdmin() || actor.UserID == r.CreatedBy {
		return nil
	}
	return apperr.Permission("user %s is not allowed to modify config %s", actor.UserID, r.ID)
}

func toNode(r *secondary.AgentConfigRecord) lineage.Node {
	return lineage.Node{
		ID:            r.ID,
		Kind:          lineage.Kind(r.Kind),
		Name:          r.Name,
		Version:       r.Version,
		Content:       r.Content,
		ParentID:      r.ParentID,
		LineageRootID: r.LineageRootID,
		Detached:      r.Detached,
	}
}

// Ensure AgentConfigServiceImpl implements the interface
var _ primary.AgentConfigService = (*AgentConfigServiceImpl)(nil)
