package workflow

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/application/mrp"
	"github.com/sorbetes/garment-ops/internal/application/scheduler"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
	"github.com/sorbetes/garment-ops/pkg/config"
	"github.com/sorbetes/garment-ops/pkg/logger"
)

// stageHours baseline estimated hours per manufacturing stage.
var stageHours = map[entity.Stage]decimal.Decimal{
	entity.StageIntake:   decimal.NewFromInt(2),
	entity.StageDesign:   decimal.NewFromInt(8),
	entity.StageCut:      decimal.NewFromInt(6),
	entity.StagePrint:    decimal.NewFromInt(8),
	entity.StageSew:      decimal.NewFromInt(16),
	entity.StageQC:       decimal.NewFromInt(4),
	entity.StagePack:     decimal.NewFromInt(3),
	entity.StageDelivery: decimal.NewFromInt(2),
}

// stageSkill minimum skill the stage's steps require.
var stageSkill = map[entity.Stage]entity.SkillLevel{
	entity.StageIntake:   entity.SkillBeginner,
	entity.StageDesign:   entity.SkillAdvanced,
	entity.StageCut:      entity.SkillIntermediate,
	entity.StagePrint:    entity.SkillIntermediate,
	entity.StageSew:      entity.SkillAdvanced,
	entity.StageQC:       entity.SkillIntermediate,
	entity.StagePack:     entity.SkillBeginner,
	entity.StageDelivery: entity.SkillBeginner,
}

// Engine drives one workflow instance per order through the fixed stage
// sequence. It consumes the scheduler's assignment results and the MRP
// planner's availability answers, and publishes a typed event for every
// state transition.
type Engine struct {
	workflows repository.WorkflowRepository
	orders    repository.OrderRepository
	alerts    repository.AlertRepository
	sched     *scheduler.Scheduler
	planner   *mrp.Planner
	bus       *Bus
	cfg       config.PlanningConfig
	log       *logger.Logger
}

// NewEngine builds the engine.
func NewEngine(
	workflows repository.WorkflowRepository,
	orders repository.OrderRepository,
	alerts repository.AlertRepository,
	sched *scheduler.Scheduler,
	planner *mrp.Planner,
	bus *Bus,
	cfg config.PlanningConfig,
	log *logger.Logger,
) *Engine {
	return &Engine{
		workflows: workflows,
		orders:    orders,
		alerts:    alerts,
		sched:     sched,
		planner:   planner,
		bus:       bus,
		cfg:       cfg,
		log:       log,
	}
}

// CreateWorkflow generates the ordered step list for the stage sequence and
// persists the instance. Each step depends on its predecessor. Material
// availability is checked up front; a shortfall raises a MATERIAL alert but
// does not block creation.
func (e *Engine) CreateWorkflow(ctx context.Context, in dto.CreateWorkflowRequest) (*dto.WorkflowView, error) {
	order, err := e.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", in.OrderID, err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", in.OrderID, domain.ErrNotFound)
	}
	if existing, err := e.workflows.GetInstanceByOrder(ctx, in.OrderID); err != nil {
		return nil, fmt.Errorf("check existing workflow: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("order %s already has workflow %s: %w", in.OrderID, existing.ID, domain.ErrConflict)
	}

	now := time.Now()
	workflowID := uuid.New().String()

	steps := make([]*entity.WorkflowStep, 0, len(entity.StageSequence))
	totalHours := decimal.Zero
	cursor := now
	var prevID string
	for i, stage := range entity.StageSequence {
		hours := stageHours[stage]
		step := &entity.WorkflowStep{
			ID:             uuid.New().String(),
			WorkflowID:     workflowID,
			Stage:          stage,
			Sequence:       i + 1,
			EstimatedHours: hours,
			Status:         entity.StepPlanned,
			PlannedStart:   cursor,
			PlannedEnd:     cursor.Add(e.hoursToDuration(hours)),
		}
		if prevID != "" {
			step.Dependencies = []string{prevID}
		}
		prevID = step.ID
		cursor = step.PlannedEnd
		totalHours = totalHours.Add(hours)
		steps = append(steps, step)
	}

	w := &entity.WorkflowInstance{
		ID:               workflowID,
		OrderID:          in.OrderID,
		Status:           entity.WorkflowPlanned,
		Priority:         in.Priority,
		CurrentStage:     entity.StageIntake,
		TotalSteps:       len(steps),
		StartDate:        now,
		EstimatedEndDate: now.Add(e.hoursToDuration(totalHours)),
		Metadata:         in.Metadata,
		CreatedAt:        now,
	}
	if err := e.workflows.Create(ctx, w, steps); err != nil {
		return nil, fmt.Errorf("persist workflow: %w", err)
	}

	e.bus.Publish(Event{
		Type:       EventWorkflowCreated,
		WorkflowID: w.ID,
		OrderID:    w.OrderID,
	})

	// Up-front material check for the order. Creation proceeds either way;
	// operators get a MATERIAL alert per shortfall material.
	if results, err := e.planner.GenerateMRPPlan(ctx, in.OrderID); err != nil {
		e.log.Warn().Err(err).Str("order_id", in.OrderID).Msg("material check skipped")
	} else {
		for _, r := range results {
			if r.Shortfall.IsPositive() {
				e.raiseMaterialAlert(ctx, w, r)
			}
		}
	}

	return e.workflowView(ctx, w)
}

// StartWorkflow moves PLANNED to IN_PROGRESS.
func (e *Engine) StartWorkflow(ctx context.Context, workflowID string) error {
	w, err := e.getInstance(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status != entity.WorkflowPlanned {
		return fmt.Errorf("start from %s: %w", w.Status, domain.ErrInvalidTransition)
	}
	w.Status = entity.WorkflowInProgress
	w.StartDate = time.Now()
	if err := e.workflows.UpdateInstance(ctx, w); err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	e.bus.Publish(Event{Type: EventWorkflowStarted, WorkflowID: w.ID, OrderID: w.OrderID})
	return nil
}

// PauseWorkflow suspends an IN_PROGRESS workflow. Completed-step counters
// are untouched.
func (e *Engine) PauseWorkflow(ctx context.Context, workflowID, reason string) error {
	w, err := e.getInstance(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status != entity.WorkflowInProgress {
		return fmt.Errorf("pause from %s: %w", w.Status, domain.ErrInvalidTransition)
	}
	w.Status = entity.WorkflowPaused
	w.PauseReason = reason
	if err := e.workflows.UpdateInstance(ctx, w); err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	e.bus.Publish(Event{
		Type: EventWorkflowPaused, WorkflowID: w.ID, OrderID: w.OrderID,
		Detail: map[string]string{"reason": reason},
	})
	return nil
}

// ResumeWorkflow returns a PAUSED workflow to IN_PROGRESS.
func (e *Engine) ResumeWorkflow(ctx context.Context, workflowID string) error {
	w, err := e.getInstance(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status != entity.WorkflowPaused {
		return fmt.Errorf("resume from %s: %w", w.Status, domain.ErrInvalidTransition)
	}
	w.Status = entity.WorkflowInProgress
	w.PauseReason = ""
	if err := e.workflows.UpdateInstance(ctx, w); err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	e.bus.Publish(Event{Type: EventWorkflowResumed, WorkflowID: w.ID, OrderID: w.OrderID})
	return nil
}

// CancelWorkflow cancels any non-terminal workflow and its unfinished steps.
func (e *Engine) CancelWorkflow(ctx context.Context, workflowID, reason string) error {
	w, err := e.getInstance(ctx, workflowID)
	if err != nil {
		return err
	}
	if w.Status.Terminal() {
		return fmt.Errorf("cancel from %s: %w", w.Status, domain.ErrInvalidTransition)
	}
	steps, err := e.workflows.ListSteps(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("list steps: %w", err)
	}
	for _, s := range steps {
		if s.Status == entity.StepCompleted || s.Status == entity.StepCancelled {
			continue
		}
		s.Status = entity.StepCancelled
		if err := e.workflows.UpdateStep(ctx, s); err != nil {
			return fmt.Errorf("cancel step %s: %w", s.ID, err)
		}
	}
	w.Status = entity.WorkflowCancelled
	if err := e.workflows.UpdateInstance(ctx, w); err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	e.bus.Publish(Event{
		Type: EventWorkflowCancelled, WorkflowID: w.ID, OrderID: w.OrderID,
		Detail: map[string]string{"reason": reason},
	})
	return nil
}

// GetWorkflow returns the instance with its steps.
func (e *Engine) GetWorkflow(ctx context.Context, workflowID string) (*dto.WorkflowView, error) {
	w, err := e.getInstance(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return e.workflowView(ctx, w)
}

// WorkflowProgress summarizes completion for dashboards.
func (e *Engine) WorkflowProgress(ctx context.Context, workflowID string) (*dto.WorkflowProgress, error) {
	w, err := e.getInstance(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	percent := 0.0
	if w.TotalSteps > 0 {
		percent = float64(w.CompletedSteps) / float64(w.TotalSteps) * 100
	}
	late := w.Status != entity.WorkflowCompleted &&
		w.Status != entity.WorkflowCancelled &&
		time.Now().After(w.EstimatedEndDate)
	return &dto.WorkflowProgress{
		WorkflowID:      w.ID,
		OrderID:         w.OrderID,
		Status:          string(w.Status),
		CurrentStage:    string(w.CurrentStage),
		PercentComplete: math.Round(percent*100) / 100,
		Late:            late,
	}, nil
}

func (e *Engine) getInstance(ctx context.Context, workflowID string) (*entity.WorkflowInstance, error) {
	w, err := e.workflows.GetInstance(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("load workflow %s: %w", workflowID, err)
	}
	if w == nil {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, domain.ErrNotFound)
	}
	return w, nil
}

// hoursToDuration spreads estimated hours over calendar days at the workday
// length.
func (e *Engine) hoursToDuration(hours decimal.Decimal) time.Duration {
	days := math.Ceil(hours.InexactFloat64() / e.cfg.WorkdayHours)
	return time.Duration(days) * 24 * time.Hour
}

func (e *Engine) workflowView(ctx context.Context, w *entity.WorkflowInstance) (*dto.WorkflowView, error) {
	steps, err := e.workflows.ListSteps(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	view := &dto.WorkflowView{
		ID:               w.ID,
		OrderID:          w.OrderID,
		Status:           string(w.Status),
		Priority:         w.Priority,
		CurrentStage:     string(w.CurrentStage),
		TotalSteps:       w.TotalSteps,
		CompletedSteps:   w.CompletedSteps,
		StartDate:        w.StartDate,
		EstimatedEndDate: w.EstimatedEndDate,
	}
	if !w.ActualEndDate.IsZero() {
		end := w.ActualEndDate
		view.ActualEndDate = &end
	}
	for _, s := range steps {
		sv := dto.WorkflowStepView{
			ID:             s.ID,
			Stage:          string(s.Stage),
			Sequence:       s.Sequence,
			Status:         string(s.Status),
			Dependencies:   s.Dependencies,
			EstimatedHours: s.EstimatedHours,
			AssignedWorker: s.AssignedWorker,
			PlannedStart:   s.PlannedStart,
			PlannedEnd:     s.PlannedEnd,
			QualityScore:   s.QualityScore,
		}
		if !s.ActualStart.IsZero() {
			t := s.ActualStart
			sv.ActualStart = &t
		}
		if !s.ActualEnd.IsZero() {
			t := s.ActualEnd
			sv.ActualEnd = &t
		}
		view.Steps = append(view.Steps, sv)
	}
	return view, nil
}
