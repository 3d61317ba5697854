package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/ctxutil"
	"github.com/example/workhub/internal/ports/primary"
)

const workScopeName = "github.com/example/workhub/app"

// WorkServiceImpl is the façade transports call. It tags the context with the
// operation and actor, opens a span, and collapses unexpected failures to a
// generic internal error after logging the cause.
type WorkServiceImpl struct {
	plans      *PlanServiceImpl
	todos      *TodoServiceImpl
	tasks      *TaskServiceImpl
	execution  *ExecutionServiceImpl
	guardrails *GuardrailServiceImpl
	configs    *AgentConfigServiceImpl
	deps       Deps
	tracer     trace.Tracer
}

// NewWorkService wires every service from one set of dependencies.
func NewWorkService(deps Deps) *WorkServiceImpl {
	return &WorkServiceImpl{
		plans:      NewPlanService(deps),
		todos:      NewTodoService(deps),
		tasks:      NewTaskService(deps),
		execution:  NewExecutionService(deps),
		guardrails: NewGuardrailService(deps),
		configs:    NewAgentConfigService(deps),
		deps:       deps,
		tracer:     otel.Tracer(workScopeName),
	}
}

func call[T any](s *WorkServiceImpl, ctx context.Context, actor primary.Actor, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx = ctxutil.WithOperation(ctx, op)
	ctx = ctxutil.WithActor(ctx, ctxutil.ActorInfo{
		UserID:      actor.UserID,
		Role:        actor.Role,
		WorkspaceID: actor.WorkspaceID,
	})
	ctx, span := s.tracer.Start(ctx, "work."+op, trace.WithAttributes(
		attribute.String("workhub.actor", actor.UserID),
		attribute.String("workhub.workspace", actor.WorkspaceID),
	))
	defer span.End()

	v, err := fn(ctx)
	if err == nil {
		return v, nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperr.KindOf(err)))
	log := s.deps.logger()
	if !apperr.IsDomain(err) {
		log.ErrorContext(ctx, "operation failed", append(ctxutil.LogAttrs(ctx), "error", err)...)
		var zero T
		return zero, apperr.Internal(err)
	}
	log.DebugContext(ctx, "operation rejected", append(ctxutil.LogAttrs(ctx), "kind", apperr.KindOf(err), "error", err)...)
	return v, err
}

// Plans

func (s *WorkServiceImpl) CreatePlan(ctx context.Context, actor primary.Actor, req primary.CreatePlanRequest) (*primary.Plan, error) {
	return call(s, ctx, actor, "createPlan", func(ctx context.Context) (*primary.Plan, error) {
		return s.plans.CreatePlan(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) GetPlan(ctx context.Context, actor primary.Actor, planID string) (*primary.Plan, error) {
	return call(s, ctx, actor, "getPlan", func(ctx context.Context) (*primary.Plan, error) {
		return s.plans.GetPlan(ctx, actor, planID)
	})
}

func (s *WorkServiceImpl) ListPlans(ctx context.Context, actor primary.Actor, filters primary.PlanFilters) ([]*primary.Plan, error) {
	return call(s, ctx, actor, "listPlans", func(ctx context.Context) ([]*primary.Plan, error) {
		return s.plans.ListPlans(ctx, actor, filters)
	})
}

func (s *WorkServiceImpl) PatchPlan(ctx context.Context, actor primary.Actor, req primary.PatchPlanRequest) (*primary.Plan, error) {
	return call(s, ctx, actor, "patchPlan", func(ctx context.Context) (*primary.Plan, error) {
		return s.plans.PatchPlan(ctx, actor, req)
	})
}

// Todos

func (s *WorkServiceImpl) CreateTodo(ctx context.Context, actor primary.Actor, req primary.CreateTodoRequest) (*primary.Todo, error) {
	return call(s, ctx, actor, "createTodo", func(ctx context.Context) (*primary.Todo, error) {
		return s.todos.CreateTodo(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) GetTodo(ctx context.Context, actor primary.Actor, todoID string) (*primary.Todo, error) {
	return call(s, ctx, actor, "getTodo", func(ctx context.Context) (*primary.Todo, error) {
		return s.todos.GetTodo(ctx, actor, todoID)
	})
}

func (s *WorkServiceImpl) ListTodos(ctx context.Context, actor primary.Actor, filters primary.TodoFilters) ([]*primary.Todo, error) {
	return call(s, ctx, actor, "listTodos", func(ctx context.Context) ([]*primary.Todo, error) {
		return s.todos.ListTodos(ctx, actor, filters)
	})
}

func (s *WorkServiceImpl) PatchTodo(ctx context.Context, actor primary.Actor, req primary.PatchTodoRequest) (*primary.Todo, error) {
	return call(s, ctx, actor, "patchTodo", func(ctx context.Context) (*primary.Todo, error) {
		return s.todos.PatchTodo(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) AssignTodo(ctx context.Context, actor primary.Actor, todoID, ownerID string) (*primary.Todo, error) {
	return call(s, ctx, actor, "assignTodo", func(ctx context.Context) (*primary.Todo, error) {
		return s.todos.AssignTodo(ctx, actor, todoID, ownerID)
	})
}

// Tasks

func (s *WorkServiceImpl) CreateTask(ctx context.Context, actor primary.Actor, req primary.CreateTaskRequest) (*primary.Task, error) {
	return call(s, ctx, actor, "createTask", func(ctx context.Context) (*primary.Task, error) {
		return s.tasks.CreateTask(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) GetTask(ctx context.Context, actor primary.Actor, taskID string) (*primary.Task, error) {
	return call(s, ctx, actor, "getTask", func(ctx context.Context) (*primary.Task, error) {
		return s.tasks.GetTask(ctx, actor, taskID)
	})
}

func (s *WorkServiceImpl) ListTasks(ctx context.Context, actor primary.Actor, filters primary.TaskFilters) ([]*primary.Task, error) {
	return call(s, ctx, actor, "listTasks", func(ctx context.Context) ([]*primary.Task, error) {
		return s.tasks.ListTasks(ctx, actor, filters)
	})
}

func (s *WorkServiceImpl) PatchTask(ctx context.Context, actor primary.Actor, req primary.PatchTaskRequest) (*primary.Task, error) {
	return call(s, ctx, actor, "patchTask", func(ctx context.Context) (*primary.Task, error) {
		return s.tasks.PatchTask(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) AssignTask(ctx context.Context, actor primary.Actor, taskID, assigneeID string) (*primary.Task, error) {
	return call(s, ctx, actor, "assignTask", func(ctx context.Context) (*primary.Task, error) {
		return s.tasks.AssignTask(ctx, actor, taskID, assigneeID)
	})
}

// Execution

func (s *WorkServiceImpl) StartTask(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	return call(s, ctx, actor, "startTask", func(ctx context.Context) (*primary.ExecutionResult, error) {
		return s.execution.StartTask(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) CompleteTask(ctx context.Context, actor primary.Actor, req primary.ExecuteTaskRequest) (*primary.ExecutionResult, error) {
	return call(s, ctx, actor, "completeTask", func(ctx context.Context) (*primary.ExecutionResult, error) {
		return s.execution.CompleteTask(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) SteerRun(ctx context.Context, actor primary.Actor, req primary.SteerRunRequest) (*primary.SteerResult, error) {
	return call(s, ctx, actor, "steerRun", func(ctx context.Context) (*primary.SteerResult, error) {
		return s.execution.SteerRun(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) PauseRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	return call(s, ctx, actor, "pauseRun", func(ctx context.Context) (*primary.Run, error) {
		return s.execution.PauseRun(ctx, actor, runID)
	})
}

func (s *WorkServiceImpl) ResumeRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	return call(s, ctx, actor, "resumeRun", func(ctx context.Context) (*primary.Run, error) {
		return s.execution.ResumeRun(ctx, actor, runID)
	})
}

func (s *WorkServiceImpl) CancelRun(ctx context.Context, actor primary.Actor, runID, reason string) (*primary.Run, error) {
	return call(s, ctx, actor, "cancelRun", func(ctx context.Context) (*primary.Run, error) {
		return s.execution.CancelRun(ctx, actor, runID, reason)
	})
}

func (s *WorkServiceImpl) GetRun(ctx context.Context, actor primary.Actor, runID string) (*primary.Run, error) {
	return call(s, ctx, actor, "getRun", func(ctx context.Context) (*primary.Run, error) {
		return s.execution.GetRun(ctx, actor, runID)
	})
}

func (s *WorkServiceImpl) ListRuns(ctx context.Context, actor primary.Actor, taskID string) ([]*primary.Run, error) {
	return call(s, ctx, actor, "listRuns", func(ctx context.Context) ([]*primary.Run, error) {
		return s.execution.ListRuns(ctx, actor, taskID)
	})
}

func (s *WorkServiceImpl) ListEvents(ctx context.Context, actor primary.Actor, filters primary.EventFilters) ([]*primary.Event, error) {
	return call(s, ctx, actor, "listEvents", func(ctx context.Context) ([]*primary.Event, error) {
		return s.execution.ListEvents(ctx, actor, filters)
	})
}

// Guardrails

func (s *WorkServiceImpl) CreateGuardrail(ctx context.Context, actor primary.Actor, req primary.CreateGuardrailRequest) (*primary.Guardrail, error) {
	return call(s, ctx, actor, "createGuardrail", func(ctx context.Context) (*primary.Guardrail, error) {
		return s.guardrails.CreateGuardrail(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) ListGuardrails(ctx context.Context, actor primary.Actor, entityType, entityID string) ([]*primary.Guardrail, error) {
	return call(s, ctx, actor, "listGuardrails", func(ctx context.Context) ([]*primary.Guardrail, error) {
		return s.guardrails.ListGuardrails(ctx, actor, entityType, entityID)
	})
}

func (s *WorkServiceImpl) SetGuardrailActive(ctx context.Context, actor primary.Actor, guardrailID string, active bool) (*primary.Guardrail, error) {
	return call(s, ctx, actor, "setGuardrailActive", func(ctx context.Context) (*primary.Guardrail, error) {
		return s.guardrails.SetGuardrailActive(ctx, actor, guardrailID, active)
	})
}

// Agent configs

func (s *WorkServiceImpl) ListAgentConfigs(ctx context.Context, actor primary.Actor, kind string) ([]*primary.AgentConfig, error) {
	return call(s, ctx, actor, "listAgentConfigs", func(ctx context.Context) ([]*primary.AgentConfig, error) {
		return s.configs.ListAgentConfigs(ctx, actor, kind)
	})
}

func (s *WorkServiceImpl) GetAgentConfig(ctx context.Context, actor primary.Actor, id string) (*primary.AgentConfig, error) {
	return call(s, ctx, actor, "getAgentConfig", func(ctx context.Context) (*primary.AgentConfig, error) {
		return s.configs.GetAgentConfig(ctx, actor, id)
	})
}

func (s *WorkServiceImpl) PutAgentConfig(ctx context.Context, actor primary.Actor, req primary.PutAgentConfigRequest) (*primary.AgentConfig, error) {
	return call(s, ctx, actor, "putAgentConfig", func(ctx context.Context) (*primary.AgentConfig, error) {
		return s.configs.PutAgentConfig(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) ForkAgentConfig(ctx context.Context, actor primary.Actor, req primary.ForkAgentConfigRequest) (*primary.AgentConfig, error) {
	return call(s, ctx, actor, "forkAgentConfig", func(ctx context.Context) (*primary.AgentConfig, error) {
		return s.configs.ForkAgentConfig(ctx, actor, req)
	})
}

func (s *WorkServiceImpl) DetachAgentConfig(ctx context.Context, actor primary.Actor, id string) (*primary.AgentConfig, error) {
	return call(s, ctx, actor, "detachAgentConfig", func(ctx context.Context) (*primary.AgentConfig, error) {
		return s.configs.DetachAgentConfig(ctx, actor, id)
	})
}

// Ensure WorkServiceImpl implements the interface
var _ primary.WorkService = (*WorkServiceImpl)(nil)
