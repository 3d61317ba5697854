package primary

// WorkService is the single façade through which transports drive the work core.
type WorkService interface {
	PlanService
	TodoService
	TaskService
	ExecutionService
	GuardrailService
	AgentConfigService
}
