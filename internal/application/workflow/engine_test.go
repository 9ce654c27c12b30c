package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/application/mrp"
	"github.com/sorbetes/garment-ops/internal/application/scheduler"
	"github.com/sorbetes/garment-ops/internal/application/workflow"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/infrastructure/memory"
	"github.com/sorbetes/garment-ops/pkg/config"
	"github.com/sorbetes/garment-ops/pkg/logger"
)

type engineFixture struct {
	workflows    *memory.WorkflowRepo
	orders       *memory.OrderRepo
	alerts       *memory.AlertRepo
	materials    *memory.MaterialInventoryRepo
	requirements *memory.MaterialRequirementRepo
	transactions *memory.MaterialTransactionRepo
	employees    *memory.EmployeeRepo
	allocations  *memory.WorkerAllocationRepo
	assignments  *memory.WorkerAssignmentRepo

	bus    *workflow.Bus
	events <-chan workflow.Event
	engine *workflow.Engine
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		workflows:    memory.NewWorkflowRepository(),
		orders:       memory.NewOrderRepository(),
		alerts:       memory.NewAlertRepository(),
		materials:    memory.NewMaterialInventoryRepository(),
		requirements: memory.NewMaterialRequirementRepository(),
		transactions: memory.NewMaterialTransactionRepository(),
		employees:    memory.NewEmployeeRepository(),
		allocations:  memory.NewWorkerAllocationRepository(),
		assignments:  memory.NewWorkerAssignmentRepository(),
	}

	cfg := config.Default()
	log := logger.Nop()
	planner := mrp.NewPlanner(f.orders, f.materials, f.requirements, f.transactions, cfg, log)
	sched := scheduler.NewScheduler(
		f.employees, f.allocations, f.assignments,
		memory.NewProductionLineRepository(),
		memory.NewWorkStationRepository(),
		memory.NewProductionScheduleRepository(),
		cfg, log,
	)
	f.bus = workflow.NewBus(log)
	var unsubscribe func()
	f.events, unsubscribe = f.bus.Subscribe(64)
	t.Cleanup(unsubscribe)
	f.engine = workflow.NewEngine(f.workflows, f.orders, f.alerts, sched, planner, f.bus, cfg, log)
	return f
}

// createWorkflow seeds an open order and builds its workflow.
func (f *engineFixture) createWorkflow(t *testing.T, orderID string) *dto.WorkflowView {
	t.Helper()
	f.orders.Put(entity.Order{ID: orderID, Status: entity.OrderOpen, DeliveryDate: time.Now().AddDate(0, 0, 14)})
	view, err := f.engine.CreateWorkflow(context.Background(), dto.CreateWorkflowRequest{OrderID: orderID, Priority: 1})
	require.NoError(t, err)
	return view
}

// nextEvent pops the next published event; all publishing is synchronous so
// events are already buffered by the time an engine call returns.
func (f *engineFixture) nextEvent(t *testing.T) workflow.Event {
	t.Helper()
	select {
	case ev := <-f.events:
		return ev
	default:
		t.Fatal("expected a published event")
		return workflow.Event{}
	}
}

func (f *engineFixture) drainEvents() {
	for {
		select {
		case <-f.events:
		default:
			return
		}
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCreateWorkflow(t *testing.T) {
	f := newEngineFixture(t)
	view := f.createWorkflow(t, "ord-1")

	assert.Equal(t, "ord-1", view.OrderID)
	assert.Equal(t, string(entity.WorkflowPlanned), view.Status)
	assert.Equal(t, string(entity.StageIntake), view.CurrentStage)
	assert.Equal(t, 8, view.TotalSteps)
	assert.Zero(t, view.CompletedSteps)
	require.Len(t, view.Steps, 8)

	// 49 estimated hours over 8-hour workdays rounds up to 7 calendar days.
	assert.Equal(t, 7*24*time.Hour, view.EstimatedEndDate.Sub(view.StartDate))

	for i, s := range view.Steps {
		assert.Equal(t, string(entity.StageSequence[i]), s.Stage)
		assert.Equal(t, i+1, s.Sequence)
		assert.Equal(t, string(entity.StepPlanned), s.Status)
		if i == 0 {
			assert.Empty(t, s.Dependencies)
		} else {
			assert.Equal(t, []string{view.Steps[i-1].ID}, s.Dependencies)
		}
	}

	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventWorkflowCreated, ev.Type)
	assert.Equal(t, view.ID, ev.WorkflowID)
	assert.Equal(t, "ord-1", ev.OrderID)
	assert.False(t, ev.At.IsZero())
}

func TestCreateWorkflow_ShortfallRaisesAlertButCreates(t *testing.T) {
	f := newEngineFixture(t)

	f.materials.Put(entity.MaterialInventory{ID: "fabric", Name: "Denim", Unit: "m", CurrentStock: dec(10)})
	f.requirements.Put(entity.MaterialRequirement{OrderID: "ord-1", MaterialID: "fabric", RequiredQuantity: dec(100)})

	view := f.createWorkflow(t, "ord-1")
	assert.Equal(t, string(entity.WorkflowPlanned), view.Status)

	alerts, err := f.engine.ActiveAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, string(entity.AlertMaterial), alerts[0].Type)
	assert.Equal(t, string(entity.SeverityHigh), alerts[0].Severity)
	assert.Equal(t, "ord-1", alerts[0].OrderID)
}

func TestCreateWorkflow_DuplicateOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.createWorkflow(t, "ord-1")

	_, err := f.engine.CreateWorkflow(context.Background(), dto.CreateWorkflowRequest{OrderID: "ord-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateWorkflow_UnknownOrder(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.CreateWorkflow(context.Background(), dto.CreateWorkflowRequest{OrderID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkflowLifecycle(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	f.drainEvents()

	// Pause before starting is not a legal move.
	assert.ErrorIs(t, f.engine.PauseWorkflow(ctx, view.ID, "x"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.engine.ResumeWorkflow(ctx, view.ID), domain.ErrInvalidTransition)

	require.NoError(t, f.engine.StartWorkflow(ctx, view.ID))
	assert.Equal(t, workflow.EventWorkflowStarted, f.nextEvent(t).Type)
	assert.ErrorIs(t, f.engine.StartWorkflow(ctx, view.ID), domain.ErrInvalidTransition)

	require.NoError(t, f.engine.PauseWorkflow(ctx, view.ID, "fabric delivery late"))
	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventWorkflowPaused, ev.Type)
	assert.Equal(t, "fabric delivery late", ev.Detail["reason"])

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.WorkflowPaused), got.Status)

	require.NoError(t, f.engine.ResumeWorkflow(ctx, view.ID))
	assert.Equal(t, workflow.EventWorkflowResumed, f.nextEvent(t).Type)

	got, err = f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.WorkflowInProgress), got.Status)
}

func TestCancelWorkflow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")
	f.drainEvents()

	require.NoError(t, f.engine.CancelWorkflow(ctx, view.ID, "order withdrawn"))
	ev := f.nextEvent(t)
	assert.Equal(t, workflow.EventWorkflowCancelled, ev.Type)
	assert.Equal(t, "order withdrawn", ev.Detail["reason"])

	got, err := f.engine.GetWorkflow(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.WorkflowCancelled), got.Status)
	for _, s := range got.Steps {
		assert.Equal(t, string(entity.StepCancelled), s.Status)
	}

	// Terminal: no further transitions.
	assert.ErrorIs(t, f.engine.CancelWorkflow(ctx, view.ID, "again"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.engine.StartWorkflow(ctx, view.ID), domain.ErrInvalidTransition)
}

func TestWorkflowProgress(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	view := f.createWorkflow(t, "ord-1")

	p, err := f.engine.WorkflowProgress(ctx, view.ID)
	require.NoError(t, err)
	assert.Zero(t, p.PercentComplete)
	assert.False(t, p.Late)

	w, err := f.workflows.GetInstance(ctx, view.ID)
	require.NoError(t, err)
	w.CompletedSteps = 4
	require.NoError(t, f.workflows.UpdateInstance(ctx, w))

	p, err = f.engine.WorkflowProgress(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.PercentComplete)
	assert.Equal(t, string(entity.StageIntake), p.CurrentStage)
}

func TestWorkflowProgress_Unknown(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.WorkflowProgress(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
