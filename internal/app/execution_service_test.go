package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/workhub/internal/apperr"
	"github.com/example/workhub/internal/ports/primary"
	"github.com/example/workhub/internal/ports/secondary"
)

func TestStartTask_OwnerStartsTodoTask(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	assert.False(t, res.Blocked)
	assert.Equal(t, "in_progress", res.RunStatus)
	assert.Equal(t, "allow", res.GuardrailDecision)
	assert.Empty(t, res.Guardrails)
	assert.Equal(t, "in_progress", res.Task.Status)
	require.NotNil(t, res.Task.StartedAt)
	assert.True(t, res.Task.StartedAt.Equal(testNow))
	assert.Nil(t, res.Task.CompletedAt)

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "task_started", events[0].Type)
	assert.Equal(t, int64(1), events[0].Sequence)
	assert.Equal(t, "user", events[0].ActorType)
	assert.Equal(t, owner.UserID, events[0].ActorID)
	assert.Equal(t, f.task.ID, events[0].Payload["taskId"])

	_, err = h.svc.PatchTask(ctx, owner, primary.PatchTaskRequest{TaskID: f.task.ID, Status: ptr("todo")})
	assert.True(t, apperr.IsConflict(err), "in_progress -> todo must be rejected, got %v", err)
}

// Starting a task that is already in_progress leaves the task row alone but
// opens a fresh run with its own task_started event.
func TestStartTask_InProgressTaskOpensAnotherRun(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	first, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	again, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, again.RunID)
	assert.Equal(t, "in_progress", again.Task.Status)
	assert.True(t, again.Task.StartedAt.Equal(testNow), "started-at is set only once")

	task, err := h.svc.GetTask(ctx, owner, f.task.ID)
	require.NoError(t, err)
	assert.True(t, task.UpdatedAt.Equal(testNow), "task row must not be rewritten")

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: again.RunID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "task_started", events[0].Type)
}

func TestStartTask_SafetyViolationBlocks(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	g := h.guardrail(t, "task", f.task.ID, "safety", map[string]any{"violated": true})

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{
		TaskID:               f.task.ID,
		ApprovedGuardrailIDs: []string{g.ID},
	})
	require.NoError(t, err)

	assert.True(t, res.Blocked)
	assert.Equal(t, "blocked", res.RunStatus)
	assert.Equal(t, "block", res.GuardrailDecision)
	assert.Equal(t, "todo", res.Task.Status)
	assert.Nil(t, res.Task.StartedAt)
	require.Len(t, res.Guardrails, 1)
	assert.Equal(t, g.ID, res.Guardrails[0].ID)
	assert.Equal(t, "block", res.Guardrails[0].Decision)

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "guardrail_blocked", events[0].Type)

	stored, err := h.svc.GetTask(ctx, owner, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, "todo", stored.Status)
}

func TestStartTask_ApprovalGrantedProceeds(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	h.guardrail(t, "plan", f.plan.ID, "approval", map[string]any{"violated": true, "approvalGranted": true})

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	assert.False(t, res.Blocked)
	assert.Equal(t, "in_progress", res.Task.Status)
	require.Len(t, res.Guardrails, 1)
	assert.Equal(t, "allow", res.Guardrails[0].Decision)
	assert.Equal(t, "plan", res.Guardrails[0].EntityType)
}

func TestStartTask_NeedsApprovalFromCallerViolation(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	g := h.guardrail(t, "todo", f.todo.ID, "quality", nil)

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{
		TaskID:               f.task.ID,
		ViolatedGuardrailIDs: []string{g.ID},
	})
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Equal(t, "needs_approval", res.GuardrailDecision)
	assert.Equal(t, "guardrail_needs_approval", res.Event.Type)

	res, err = h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{
		TaskID:               f.task.ID,
		ViolatedGuardrailIDs: []string{g.ID},
		ApprovedGuardrailIDs: []string{g.ID},
	})
	require.NoError(t, err)
	assert.False(t, res.Blocked)
}

func TestStartTask_InactiveGuardrailIgnored(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	g := h.guardrail(t, "task", f.task.ID, "scope", map[string]any{"violated": true})
	_, err := h.svc.SetGuardrailActive(ctx, owner, g.ID, false)
	require.NoError(t, err)

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)
	assert.False(t, res.Blocked)
	assert.Empty(t, res.Guardrails)
}

func TestStartTask_Rejections(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	_, err := h.svc.StartTask(ctx, stranger, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	assert.True(t, apperr.IsPermission(err), "got %v", err)

	_, err = h.svc.StartTask(ctx, outsider, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	assert.True(t, apperr.IsNotFound(err), "got %v", err)

	_, err = h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID, Mode: "yolo"})
	assert.True(t, apperr.IsValidation(err), "got %v", err)

	_, err = h.svc.PatchTask(ctx, owner, primary.PatchTaskRequest{TaskID: f.task.ID, Status: ptr("cancelled")})
	require.NoError(t, err)
	_, err = h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	assert.True(t, apperr.IsConflict(err), "got %v", err)

	runs, err := h.svc.ListRuns(ctx, owner, f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, runs, "rejected starts must not create runs")
}

func TestStartTask_AssigneeAndAdminMayStart(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	_, err := h.svc.AssignTask(ctx, owner, f.task.ID, stranger.UserID)
	require.NoError(t, err)

	res, err := h.svc.StartTask(ctx, stranger, primary.ExecuteTaskRequest{TaskID: f.task.ID, Mode: "full_auto"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", res.Task.Status)

	run, err := h.svc.GetRun(ctx, admin, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "full_auto", run.Mode)
	assert.Equal(t, stranger.UserID, run.StartedBy)
	assert.Equal(t, f.plan.ID, run.PlanID)
}

func TestCompleteTask_NeverStarted(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	res, err := h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	assert.False(t, res.Blocked)
	assert.Equal(t, "completed", res.RunStatus)
	assert.Equal(t, "done", res.Task.Status)
	require.NotNil(t, res.Task.CompletedAt)
	require.NotNil(t, res.Task.StartedAt)
	assert.True(t, res.Task.StartedAt.Equal(testNow))
	assert.True(t, res.Task.CompletedAt.Equal(testNow))

	run, err := h.svc.GetRun(ctx, owner, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	require.NotNil(t, run.CompletedAt)

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "task_completed", events[0].Type)
	assert.Equal(t, int64(1), events[0].Sequence)
}

func TestCompleteTask_ReusesLatestRun(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	first, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	second, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	done, err := h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	assert.Equal(t, second.RunID, done.RunID)
	assert.NotEqual(t, first.RunID, done.RunID)
	assert.Equal(t, "done", done.Task.Status)
	assert.True(t, done.Task.StartedAt.Equal(testNow), "started-at must be preserved")
	assert.True(t, done.Task.CompletedAt.Equal(testNow.Add(2*time.Minute)))

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: second.RunID})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, []string{"task_started", "task_completed"}, []string{events[0].Type, events[1].Type})
	assert.Equal(t, []int64{1, 2}, []int64{events[0].Sequence, events[1].Sequence})

	after, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: second.RunID, AfterSequence: 1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, int64(2), after[0].Sequence)
}

func TestCompleteTask_BlockedLeavesTaskUnchanged(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	started, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	g := h.guardrail(t, "todo", f.todo.ID, "scope", nil)
	res, err := h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{
		TaskID:               f.task.ID,
		ViolatedGuardrailIDs: []string{g.ID},
	})
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Equal(t, started.RunID, res.RunID)
	assert.Equal(t, "blocked", res.RunStatus)
	assert.Equal(t, "in_progress", res.Task.Status)
	assert.Nil(t, res.Task.CompletedAt)

	// A blocked run can be resumed once the violation is resolved.
	run, err := h.svc.ResumeRun(ctx, owner, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", run.Status)
}

func TestCompleteTask_DoneTaskIsConflict(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	done, err := h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	g := h.guardrail(t, "task", f.task.ID, "safety", nil)
	h.clock.Advance(time.Minute)
	_, err = h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{
		TaskID:               f.task.ID,
		ViolatedGuardrailIDs: []string{g.ID},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err), "got %v", err)

	run, err := h.svc.GetRun(ctx, owner, done.RunID)
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	require.NotNil(t, run.CompletedAt)
	assert.True(t, run.CompletedAt.Equal(testNow))

	_, err = h.svc.ResumeRun(ctx, owner, done.RunID)
	assert.True(t, apperr.IsConflict(err), "a completed run cannot be resumed, got %v", err)

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: done.RunID})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCompleteTask_AfterCancelledRunOpensNewRun(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	started, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	_, err = h.svc.CancelRun(ctx, owner, started.RunID, "wrong approach")
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	done, err := h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)
	assert.NotEqual(t, started.RunID, done.RunID)
	assert.Equal(t, "completed", done.RunStatus)
	assert.Equal(t, "done", done.Task.Status)

	cancelled, err := h.svc.GetRun(ctx, owner, started.RunID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	require.NotNil(t, cancelled.CompletedAt)
	assert.True(t, cancelled.CompletedAt.Equal(testNow.Add(time.Minute)))

	runs, err := h.svc.ListRuns(ctx, owner, f.task.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestCompleteTask_RollsBackWhenEventAppendFails(t *testing.T) {
	boom := errors.New("disk full")
	h := newHarnessWithStore(t, func(s secondary.Store) secondary.Store {
		return &failingAppendStore{Store: s, err: boom}
	})
	ctx := context.Background()

	// Setup writes no events, so it is unaffected by the failing append.
	f := h.seed(t)

	_, err := h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.NotContains(t, err.Error(), "disk full")

	task, err := h.svc.GetTask(ctx, owner, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, "todo", task.Status)
	assert.Nil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)

	runs, err := h.svc.ListRuns(ctx, owner, f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCompleteTask_IllegalFromDeferred(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	_, err := h.svc.PatchTask(ctx, owner, primary.PatchTaskRequest{TaskID: f.task.ID, Status: ptr("deferred")})
	require.NoError(t, err)

	_, err = h.svc.CompleteTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), "deferred")
	assert.Contains(t, err.Error(), "done")
}

func TestRunLifecycle(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	paused, err := h.svc.PauseRun(ctx, owner, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "paused", paused.Status)

	_, err = h.svc.PauseRun(ctx, owner, res.RunID)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	steered, err := h.svc.SteerRun(ctx, owner, primary.SteerRunRequest{RunID: res.RunID, Message: "focus on install steps"})
	require.NoError(t, err)
	assert.Equal(t, "paused", steered.Run.Status, "steer never changes run status")
	assert.Equal(t, "steer", steered.Event.Type)
	assert.Equal(t, "focus on install steps", steered.Event.Payload["message"])

	resumed, err := h.svc.ResumeRun(ctx, owner, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", resumed.Status)

	_, err = h.svc.ResumeRun(ctx, owner, res.RunID)
	assert.True(t, apperr.IsConflict(err))

	cancelled, err := h.svc.CancelRun(ctx, owner, res.RunID, "superseded")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	require.NotNil(t, cancelled.CompletedAt)

	_, err = h.svc.SteerRun(ctx, owner, primary.SteerRunRequest{RunID: res.RunID, Message: "too late"})
	assert.True(t, apperr.IsConflict(err))
	_, err = h.svc.CancelRun(ctx, owner, res.RunID, "")
	assert.True(t, apperr.IsConflict(err))

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: res.RunID})
	require.NoError(t, err)
	var types []string
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.Sequence)
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{"task_started", "run_paused", "steer", "run_resumed", "run_cancelled"}, types)
	assert.Equal(t, "superseded", events[4].Payload["reason"])

	task, err := h.svc.GetTask(ctx, owner, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", task.Status, "run changes never touch the task")
}

func TestPauseRun_PausedRunUnchanged(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)
	_, err = h.svc.PauseRun(ctx, owner, res.RunID)
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	_, err = h.svc.PauseRun(ctx, owner, res.RunID)
	require.True(t, apperr.IsConflict(err))

	run, err := h.svc.GetRun(ctx, owner, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "paused", run.Status)
	assert.True(t, run.UpdatedAt.Equal(testNow))

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: res.RunID})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRunOperations_Permissions(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	_, err = h.svc.PauseRun(ctx, stranger, res.RunID)
	assert.True(t, apperr.IsPermission(err))
	_, err = h.svc.SteerRun(ctx, stranger, primary.SteerRunRequest{RunID: res.RunID, Message: "hi"})
	assert.True(t, apperr.IsPermission(err))
	_, err = h.svc.SteerRun(ctx, owner, primary.SteerRunRequest{RunID: res.RunID, Message: "  "})
	assert.True(t, apperr.IsValidation(err))
	_, err = h.svc.GetRun(ctx, outsider, res.RunID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = h.svc.ListEvents(ctx, outsider, primary.EventFilters{RunID: res.RunID})
	assert.True(t, apperr.IsNotFound(err))

	_, err = h.svc.PauseRun(ctx, admin, res.RunID)
	assert.NoError(t, err)
}

func TestSteerRun_ConcurrentSequencesAreDense(t *testing.T) {
	h := newHarness(t)
	f := h.seed(t)
	ctx := context.Background()

	res, err := h.svc.StartTask(ctx, owner, primary.ExecuteTaskRequest{TaskID: f.task.ID})
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.SteerRun(ctx, owner, primary.SteerRunRequest{RunID: res.RunID, Message: "nudge"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	events, err := h.svc.ListEvents(ctx, owner, primary.EventFilters{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, events, writers+1)
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.Sequence)
	}
}
