package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/application/workflow"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// roster seeds an active employee plus an allocation covering the given day.
func (f *engineFixture) roster(workerID string, day time.Time, skill entity.SkillLevel) {
	f.employees.Put(entity.Employee{ID: workerID, Name: workerID, IsActive: true})
	f.allocations.Put(entity.WorkerAllocation{
		WorkerID:       workerID,
		Date:           day,
		Shift:          entity.ShiftMorning,
		HoursAllocated: dec(8),
		SkillLevel:     skill,
		HourlyRate:     dec(15),
	})
}

func (f *engineFixture) markCompleted(t *testing.T, stepIDs ...string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range stepIDs {
		s, err := f.workflows.GetStep(ctx, id)
		require.NoError(t, err)
		s.Status = entity.StepCompleted
		require.NoError(t, f.workflows.UpdateStep(ctx, s))
	}
}

func TestAssignWorker(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	intake := view.Steps[0]
	f.roster("w-1", intake.PlannedStart, entity.SkillBeginner)
	f.drainEvents()

	result, err := f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	require.NoError(t, err)
	assert.Equal(t, dto.AssignmentCommitted, result.Status)

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "w-1", got.Steps[0].AssignedWorker)

	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventWorkerAssigned, ev.Type)
	assert.Equal(t, intake.ID, ev.StepID)
	assert.Equal(t, "true", ev.Detail["success"])
	assert.Equal(t, "w-1", ev.Detail["worker_id"])
}

func TestAssignWorker_RejectionLeavesStepUntouched(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	intake := view.Steps[0]
	// Known worker, but nothing on the roster for the day.
	f.employees.Put(entity.Employee{ID: "w-1", Name: "w-1", IsActive: true})
	f.drainEvents()

	result, err := f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	require.NoError(t, err)
	assert.Equal(t, dto.AssignmentRejected, result.Status)
	assert.Equal(t, dto.ReasonUnavailable, result.Reason)

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Steps[0].AssignedWorker)

	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventWorkerAssigned, ev.Type)
	assert.Equal(t, "false", ev.Detail["success"])
	assert.Equal(t, dto.ReasonUnavailable, ev.Detail["reason"])
}

func TestStartStep_Gates(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	intake, design := view.Steps[0], view.Steps[1]
	f.roster("w-1", intake.PlannedStart, entity.SkillBeginner)

	// Workflow not running yet.
	assert.ErrorIs(t, f.engine.StartStep(ctx, intake.ID), domain.ErrInvalidTransition)

	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))

	// Dependency not completed.
	assert.ErrorIs(t, f.engine.StartStep(ctx, design.ID), domain.ErrInvalidTransition)

	// No worker committed.
	assert.ErrorIs(t, f.engine.StartStep(ctx, intake.ID), domain.ErrInvalidTransition)

	result, err := f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	require.NoError(t, err)
	require.Equal(t, dto.AssignmentCommitted, result.Status)
	f.drainEvents()

	require.NoError(t, f.engine.StartStep(ctx, intake.ID))

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StepInProgress), got.Steps[0].Status)
	require.NotNil(t, got.Steps[0].ActualStart)
	assert.Equal(t, string(entity.StageIntake), got.CurrentStage)

	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventStepStarted, ev.Type)
	assert.Equal(t, "w-1", ev.Detail["worker_id"])

	// Started steps take no further assignment.
	_, err = f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.engine.StartStep(ctx, intake.ID), domain.ErrInvalidTransition)
}

func TestStartStep_MaterialGate(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	cut := view.Steps[2]
	require.Equal(t, string(entity.StageCut), cut.Stage)

	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))
	f.markCompleted(t, view.Steps[0].ID, view.Steps[1].ID)

	f.roster("cutter", cut.PlannedStart, entity.SkillIntermediate)
	result, err := f.engine.AssignWorker(ctx, cut.ID, "cutter", "")
	require.NoError(t, err)
	require.Equal(t, dto.AssignmentCommitted, result.Status)

	// Shortfall appears after the workflow was planned.
	f.materials.Put(entity.MaterialInventory{ID: "lining", Name: "Lining", Unit: "m", CurrentStock: dec(5)})
	f.requirements.Put(entity.MaterialRequirement{OrderID: "ord-1", MaterialID: "lining", RequiredQuantity: dec(50)})

	err = f.engine.StartStep(ctx, cut.ID)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StepPlanned), got.Steps[2].Status)

	alerts, err := f.engine.ActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, string(entity.AlertMaterial), alerts[0].Type)
}

func TestCompleteStep_AdvancesWorkflow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	intake := view.Steps[0]
	f.roster("w-1", intake.PlannedStart, entity.SkillBeginner)

	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))
	_, err := f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	require.NoError(t, err)
	require.NoError(t, f.engine.StartStep(ctx, intake.ID))
	f.drainEvents()

	score := decimal.NewFromInt(95)
	require.NoError(t, f.engine.CompleteStep(ctx, intake.ID, dto.CompleteStepRequest{
		QualityScore: &score,
		Notes:        "fabric inspected",
	}))

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CompletedSteps)
	assert.Equal(t, string(entity.StageDesign), got.CurrentStage)
	assert.Equal(t, string(entity.StepCompleted), got.Steps[0].Status)
	require.NotNil(t, got.Steps[0].ActualEnd)

	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventStepCompleted, ev.Type)

	// A healthy score raises nothing.
	alerts, err := f.engine.ActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// Completing a step that never ran is not a legal move.
	assert.ErrorIs(t, f.engine.CompleteStep(ctx, view.Steps[3].ID, dto.CompleteStepRequest{}), domain.ErrInvalidTransition)
}

func TestCompleteStep_LowQualityRaisesAlert(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	intake := view.Steps[0]
	f.roster("w-1", intake.PlannedStart, entity.SkillBeginner)

	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))
	_, err := f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	require.NoError(t, err)
	require.NoError(t, f.engine.StartStep(ctx, intake.ID))

	score := decimal.NewFromInt(60)
	require.NoError(t, f.engine.CompleteStep(ctx, intake.ID, dto.CompleteStepRequest{QualityScore: &score}))

	alerts, err := f.engine.ActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, string(entity.AlertQuality), alerts[0].Type)
	assert.Equal(t, string(entity.SeverityMedium), alerts[0].Severity)
}

func TestCompleteStep_LastStepCompletesWorkflow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))

	var firstSeven []string
	for _, s := range view.Steps[:7] {
		firstSeven = append(firstSeven, s.ID)
	}
	f.markCompleted(t, firstSeven...)

	w, err := f.workflows.GetInstance(ctx, view.ID)
	require.NoError(t, err)
	w.CompletedSteps = 7
	require.NoError(t, f.workflows.UpdateInstance(ctx, w))

	last, err := f.workflows.GetStep(ctx, view.Steps[7].ID)
	require.NoError(t, err)
	last.Status = entity.StepInProgress
	last.ActualStart = time.Now().Add(-time.Hour)
	require.NoError(t, f.workflows.UpdateStep(ctx, last))
	f.drainEvents()

	require.NoError(t, f.engine.CompleteStep(ctx, last.ID, dto.CompleteStepRequest{}))

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.WorkflowCompleted), got.Status)
	assert.Equal(t, 8, got.CompletedSteps)
	require.NotNil(t, got.ActualEndDate)

	assert.Equal(t, workflow.EventStepCompleted, f.nextEvent(t).Type)
	assert.Equal(t, workflow.EventWorkflowCompleted, f.nextEvent(t).Type)
}

func TestDelayStep(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	intake := view.Steps[0]
	f.roster("w-1", intake.PlannedStart, entity.SkillBeginner)

	// Planned steps cannot be delayed.
	assert.ErrorIs(t, f.engine.DelayStep(ctx, intake.ID, "x"), domain.ErrInvalidTransition)

	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))
	_, err := f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	require.NoError(t, err)
	require.NoError(t, f.engine.StartStep(ctx, intake.ID))
	f.drainEvents()

	require.NoError(t, f.engine.DelayStep(ctx, intake.ID, "cutting table jammed"))

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StepDelayed), got.Steps[0].Status)
	// Estimated end is days away, so the workflow itself is not delayed yet.
	assert.Equal(t, string(entity.WorkflowInProgress), got.Status)

	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventStepDelayed, ev.Type)
	assert.Equal(t, "cutting table jammed", ev.Detail["reason"])

	alerts, err := f.engine.ActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, string(entity.AlertDelay), alerts[0].Type)
	assert.Equal(t, "cutting table jammed", alerts[0].Message)

	// Delayed steps can still be finished.
	require.NoError(t, f.engine.CompleteStep(ctx, intake.ID, dto.CompleteStepRequest{}))
}

func TestStartStep_ResumesDelayedWorkflow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	intake, design := view.Steps[0], view.Steps[1]
	f.roster("w-1", intake.PlannedStart, entity.SkillBeginner)
	f.roster("w-2", design.PlannedStart, entity.SkillAdvanced)

	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))

	// Blow the estimated end so the delay marks the whole workflow DELAYED.
	w, err := f.workflows.GetInstance(ctx, view.ID)
	require.NoError(t, err)
	w.EstimatedEndDate = time.Now().Add(-time.Hour)
	require.NoError(t, f.workflows.UpdateInstance(ctx, w))

	_, err = f.engine.AssignWorker(ctx, intake.ID, "w-1", "")
	require.NoError(t, err)
	require.NoError(t, f.engine.StartStep(ctx, intake.ID))
	require.NoError(t, f.engine.DelayStep(ctx, intake.ID, "fabric stuck in customs"))

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, string(entity.WorkflowDelayed), got.Status)

	// The delay episode ends: the late step finishes and the next one starts.
	require.NoError(t, f.engine.CompleteStep(ctx, intake.ID, dto.CompleteStepRequest{}))
	result, err := f.engine.AssignWorker(ctx, design.ID, "w-2", "")
	require.NoError(t, err)
	require.Equal(t, dto.AssignmentCommitted, result.Status)
	require.NoError(t, f.engine.StartStep(ctx, design.ID))

	got, err = f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.WorkflowInProgress), got.Status)
	assert.Equal(t, string(entity.StageDesign), got.CurrentStage)
	assert.Equal(t, string(entity.StepInProgress), got.Steps[1].Status)
}

func TestStartStep_UnknownStep(t *testing.T) {
	f := newEngineFixture(t)
	assert.ErrorIs(t, f.engine.StartStep(context.Background(), "ghost"), domain.ErrNotFound)
}
