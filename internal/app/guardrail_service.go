package app

import (
	"context"
	"strings"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/core/guardrail"
	"github.com/example/workhub/internal/core/permission"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

// GuardrailServiceImpl implements the GuardrailService interface.
type GuardrailServiceImpl struct {
	deps Deps
}

// NewGuardrailService creates a new GuardrailService with injected dependencies.
func NewGuardrailService(deps Deps) *GuardrailServiceImpl {
	return &GuardrailServiceImpl{deps: deps}
}

// CreateGuardrail attaches a guardrail to an entity the actor may edit.
func (s *GuardrailServiceImpl) CreateGuardrail(ctx context.Context, actor primary.Actor, req primary.CreateGuardrailRequest) (*primary.Guardrail, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	entityType := guardrail.EntityType(req.EntityType)
	if !entityType.IsValid() {
		return nil, apperr.Validation("invalid guardrail entity type %q", req.EntityType)
	}
	if req.EntityID == "" {
		return nil, apperr.Validation("guardrail entity id is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("guardrail name is required")
	}
	category, err := guardrail.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	config := req.Config
	if config == nil {
		config = map[string]any{}
	}

	var created *secondary.GuardrailRecord
	err = s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		if err := checkTargetEditable(ctx, tx, actor, entityType, req.EntityID); err != nil {
			return err
		}
		now := s.deps.Clock.Now()
		created = &secondary.GuardrailRecord{
			ID:          s.deps.IDs.NewID(prefixGuardrail),
			WorkspaceID: actor.WorkspaceID,
			EntityType:  string(entityType),
			EntityID:    req.EntityID,
			Name:        req.Name,
			Category:    string(category),
			Active:      active,
			Config:      config,
			CreatedBy:   actor.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Guardrails().Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return recordToGuardrail(created), nil
}

// ListGuardrails lists every guardrail attached to the entity, inactive ones included.
func (s *GuardrailServiceImpl) ListGuardrails(ctx context.Context, actor primary.Actor, entityType, entityID string) ([]*primary.Guardrail, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	et := guardrail.EntityType(entityType)
	if !et.IsValid() {
		return nil, apperr.Validation("invalid guardrail entity type %q", entityType)
	}
	if err := entityExists(ctx, s.deps.Store, actor.WorkspaceID, et, entityID); err != nil {
		return nil, err
	}

	records, err := s.deps.Store.Guardrails().ListForScopes(ctx, actor.WorkspaceID,
		[]secondary.GuardrailScope{{EntityType: entityType, EntityID: entityID}}, false)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.Guardrail, len(records))
	for i, r := range records {
		out[i] = recordToGuardrail(r)
	}
	return out, nil
}

// SetGuardrailActive enables or disables a guardrail.
func (s *GuardrailServiceImpl) SetGuardrailActive(ctx context.Context, actor primary.Actor, guardrailID string, active bool) (*primary.Guardrail, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var result *secondary.GuardrailRecord
	err := s.deps.Store.RunInTransaction(ctx, func(tx secondary.Transaction) error {
		record, err := tx.Guardrails().GetByID(ctx, actor.WorkspaceID, guardrailID)
		if err != nil {
			return err
		}
		if err := checkTargetEditable(ctx, tx, actor, guardrail.EntityType(record.EntityType), record.EntityID); err != nil {
			return err
		}
		if record.Active == active {
			return apperr.Conflict("guardrail %s is already %s", guardrailID, activeWord(active))
		}

		now := s.deps.Clock.Now()
		if err := tx.Guardrails().SetActive(ctx, actor.WorkspaceID, guardrailID, active, now); err != nil {
			return err
		}
		record.Active = active
		record.UpdatedAt = now
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recordToGuardrail(result), nil
}

// checkTargetEditable requires edit rights on the entity a guardrail is attached to.
// Task guardrails are governed by the task's todo.
func checkTargetEditable(ctx context.Context, repos secondary.Repositories, actor primary.Actor, et guardrail.EntityType, id string) error {
	switch et {
	case guardrail.EntityTask:
		bundle, err := repos.Tasks().GetBundle(ctx, actor.WorkspaceID, id)
		if err != nil {
			return err
		}
		return permission.Check(permission.ActionTodoEdit, todoFacts(actor, bundle.Todo)).Error()
	case guardrail.EntityTodo:
		todo, err := repos.Todos().GetByID(ctx, actor.WorkspaceID, id)
		if err != nil {
			return err
		}
		return permission.Check(permission.ActionTodoEdit, todoFacts(actor, todo)).Error()
	case guardrail.EntityPlan:
		p, err := repos.Plans().GetByID(ctx, actor.WorkspaceID, id)
		if err != nil {
			return err
		}
		return permission.Check(permission.ActionTodoEdit, planFacts(actor, p)).Error()
	default:
		return apperr.Validation("invalid guardrail entity type %q", et)
	}
}

func entityExists(ctx context.Context, repos secondary.Repositories, workspaceID string, et guardrail.EntityType, id string) error {
	var err error
	switch et {
	case guardrail.EntityTask:
		_, err = repos.Tasks().GetByID(ctx, workspaceID, id)
	case guardrail.EntityTodo:
		_, err = repos.Todos().GetByID(ctx, workspaceID, id)
	case guardrail.EntityPlan:
		_, err = repos.Plans().GetByID(ctx, workspaceID, id)
	}
	return err
}

func activeWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// toEvaluatorGuardrails converts persisted guardrails for the evaluator.
func toEvaluatorGuardrails(records []*secondary.GuardrailRecord) []guardrail.Guardrail {
	out := make([]guardrail.Guardrail, len(records))
	for i, r := range records {
		out[i] = guardrail.Guardrail{
			ID:         r.ID,
			Name:       r.Name,
			EntityType: guardrail.EntityType(r.EntityType),
			EntityID:   r.EntityID,
			Category:   guardrail.Category(r.Category),
			Active:     r.Active,
			Config:     r.Config,
		}
	}
	return out
}

// Ensure GuardrailServiceImpl implements the interface
var _ primary.GuardrailService = (*GuardrailServiceImpl)(nil)
