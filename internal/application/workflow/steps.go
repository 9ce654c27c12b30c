package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// StartStep moves a step into IN_PROGRESS. It requires the workflow to be
// running or DELAYED, every dependency COMPLETED, a committed worker
// assignment, and — for material-consuming stages — no open shortfall for the
// order. Starting work on a DELAYED workflow returns it to IN_PROGRESS.
func (e *Engine) StartStep(ctx context.Context, stepID string) error {
	step, w, err := e.getStep(ctx, stepID)
	if err != nil {
		return err
	}
	if w.Status != entity.WorkflowInProgress && w.Status != entity.WorkflowDelayed {
		return fmt.Errorf("workflow is %s: %w", w.Status, domain.ErrInvalidTransition)
	}
	if step.Status != entity.StepPlanned {
		return fmt.Errorf("start step from %s: %w", step.Status, domain.ErrInvalidTransition)
	}
	if err := e.dependenciesCompleted(ctx, step); err != nil {
		return err
	}
	if step.AssignedWorker == "" {
		return fmt.Errorf("step %s has no worker assignment: %w", stepID, domain.ErrInvalidTransition)
	}

	if step.Stage.ConsumesMaterial() {
		results, err := e.planner.GenerateMRPPlan(ctx, w.OrderID)
		if err != nil {
			return fmt.Errorf("material check for order %s: %w", w.OrderID, err)
		}
		for _, r := range results {
			if r.Shortfall.IsPositive() {
				e.raiseMaterialAlert(ctx, w, r)
				return fmt.Errorf("material %s short by %s: %w",
					r.MaterialID, r.Shortfall.String(), domain.ErrUnavailable)
			}
		}
	}

	step.Status = entity.StepInProgress
	step.ActualStart = time.Now()
	if err := e.workflows.UpdateStep(ctx, step); err != nil {
		return fmt.Errorf("update step: %w", err)
	}
	w.CurrentStage = step.Stage
	if w.Status == entity.WorkflowDelayed {
		w.Status = entity.WorkflowInProgress
	}
	if err := e.workflows.UpdateInstance(ctx, w); err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}

	e.bus.Publish(Event{
		Type:       EventStepStarted,
		WorkflowID: w.ID,
		OrderID:    w.OrderID,
		StepID:     step.ID,
		Stage:      string(step.Stage),
		Detail:     map[string]string{"worker_id": step.AssignedWorker},
	})
	return nil
}

// CompleteStep marks the step COMPLETED and advances the workflow. The last
// step completes the workflow and stamps the actual end date. A quality
// score under the configured threshold raises a QUALITY alert.
func (e *Engine) CompleteStep(ctx context.Context, stepID string, in dto.CompleteStepRequest) error {
	step, w, err := e.getStep(ctx, stepID)
	if err != nil {
		return err
	}
	if step.Status != entity.StepInProgress && step.Status != entity.StepDelayed {
		return fmt.Errorf("complete step from %s: %w", step.Status, domain.ErrInvalidTransition)
	}
	if err := e.dependenciesCompleted(ctx, step); err != nil {
		return err
	}

	now := time.Now()
	step.Status = entity.StepCompleted
	step.ActualEnd = now
	step.Notes = in.Notes
	if in.QualityScore != nil {
		step.QualityScore = *in.QualityScore
	}
	if err := e.workflows.UpdateStep(ctx, step); err != nil {
		return fmt.Errorf("update step: %w", err)
	}

	w.CompletedSteps++
	if w.CompletedSteps >= w.TotalSteps {
		w.Status = entity.WorkflowCompleted
		w.ActualEndDate = now
	} else if next, err := e.nextPlannedStep(ctx, w.ID); err != nil {
		return err
	} else if next != nil {
		w.CurrentStage = next.Stage
	}
	if err := e.workflows.UpdateInstance(ctx, w); err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}

	e.bus.Publish(Event{
		Type:       EventStepCompleted,
		WorkflowID: w.ID,
		OrderID:    w.OrderID,
		StepID:     step.ID,
		Stage:      string(step.Stage),
	})
	if w.Status == entity.WorkflowCompleted {
		e.bus.Publish(Event{Type: EventWorkflowCompleted, WorkflowID: w.ID, OrderID: w.OrderID})
	}

	if in.QualityScore != nil && in.QualityScore.LessThan(decimal.NewFromFloat(e.cfg.QualityThreshold)) {
		e.createAlert(ctx, &entity.ProductionAlert{
			Type:       entity.AlertQuality,
			Severity:   entity.SeverityMedium,
			Title:      fmt.Sprintf("Low quality score at %s", step.Stage),
			Message:    fmt.Sprintf("Step scored %s, threshold is %.0f", in.QualityScore.String(), e.cfg.QualityThreshold),
			WorkflowID: w.ID,
			OrderID:    w.OrderID,
		})
	}
	return nil
}

// DelayStep flags a running step as DELAYED, raises a DELAY alert, and marks
// the whole workflow DELAYED once its estimated end has passed.
func (e *Engine) DelayStep(ctx context.Context, stepID, reason string) error {
	step, w, err := e.getStep(ctx, stepID)
	if err != nil {
		return err
	}
	if step.Status != entity.StepInProgress {
		return fmt.Errorf("delay step from %s: %w", step.Status, domain.ErrInvalidTransition)
	}
	step.Status = entity.StepDelayed
	if err := e.workflows.UpdateStep(ctx, step); err != nil {
		return fmt.Errorf("update step: %w", err)
	}
	if time.Now().After(w.EstimatedEndDate) && w.Status == entity.WorkflowInProgress {
		w.Status = entity.WorkflowDelayed
		if err := e.workflows.UpdateInstance(ctx, w); err != nil {
			return fmt.Errorf("update workflow: %w", err)
		}
	}

	e.bus.Publish(Event{
		Type:       EventStepDelayed,
		WorkflowID: w.ID,
		OrderID:    w.OrderID,
		StepID:     step.ID,
		Stage:      string(step.Stage),
		Detail:     map[string]string{"reason": reason},
	})
	e.createAlert(ctx, &entity.ProductionAlert{
		Type:       entity.AlertDelay,
		Severity:   entity.SeverityMedium,
		Title:      fmt.Sprintf("Step delayed at %s", step.Stage),
		Message:    reason,
		WorkflowID: w.ID,
		OrderID:    w.OrderID,
	})
	return nil
}

// AssignWorker delegates to the scheduler's assignment contract. A rejection
// leaves the step untouched and is published as a failed WORKER_ASSIGNED
// event carrying the conflict reason; the result (with alternatives) goes
// back to the caller either way.
func (e *Engine) AssignWorker(ctx context.Context, stepID, workerID string, shift entity.Shift) (*dto.WorkerAssignmentResult, error) {
	step, w, err := e.getStep(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if step.Status != entity.StepPlanned {
		return nil, fmt.Errorf("assign to step in %s: %w", step.Status, domain.ErrInvalidTransition)
	}
	if shift == "" {
		shift = entity.ShiftMorning
	}

	result, err := e.sched.AssignWorkerToTask(ctx, dto.AssignmentRequest{
		WorkerID:       workerID,
		ScheduleID:     step.ID,
		Date:           dayOf(step.PlannedStart),
		Shift:          string(shift),
		RequiredSkill:  string(stageSkill[step.Stage]),
		EstimatedHours: step.EstimatedHours,
	})
	if err != nil {
		return nil, err
	}

	if result.Status == dto.AssignmentRejected {
		e.bus.Publish(Event{
			Type:       EventWorkerAssigned,
			WorkflowID: w.ID,
			OrderID:    w.OrderID,
			StepID:     step.ID,
			Stage:      string(step.Stage),
			Detail: map[string]string{
				"worker_id": workerID,
				"success":   "false",
				"reason":    result.Reason,
			},
		})
		return result, nil
	}

	step.AssignedWorker = workerID
	if err := e.workflows.UpdateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}
	e.bus.Publish(Event{
		Type:       EventWorkerAssigned,
		WorkflowID: w.ID,
		OrderID:    w.OrderID,
		StepID:     step.ID,
		Stage:      string(step.Stage),
		Detail: map[string]string{
			"worker_id": workerID,
			"success":   "true",
		},
	})
	return result, nil
}

func (e *Engine) getStep(ctx context.Context, stepID string) (*entity.WorkflowStep, *entity.WorkflowInstance, error) {
	step, err := e.workflows.GetStep(ctx, stepID)
	if err != nil {
		return nil, nil, fmt.Errorf("load step %s: %w", stepID, err)
	}
	if step == nil {
		return nil, nil, fmt.Errorf("step %s: %w", stepID, domain.ErrNotFound)
	}
	w, err := e.getInstance(ctx, step.WorkflowID)
	if err != nil {
		return nil, nil, err
	}
	return step, w, nil
}

func (e *Engine) dependenciesCompleted(ctx context.Context, step *entity.WorkflowStep) error {
	for _, depID := range step.Dependencies {
		dep, err := e.workflows.GetStep(ctx, depID)
		if err != nil {
			return fmt.Errorf("load dependency %s: %w", depID, err)
		}
		if dep == nil || dep.Status != entity.StepCompleted {
			return fmt.Errorf("dependency %s not completed: %w", depID, domain.ErrInvalidTransition)
		}
	}
	return nil
}

func (e *Engine) nextPlannedStep(ctx context.Context, workflowID string) (*entity.WorkflowStep, error) {
	steps, err := e.workflows.ListSteps(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	var next *entity.WorkflowStep
	for _, s := range steps {
		if s.Status != entity.StepPlanned {
			continue
		}
		if next == nil || s.Sequence < next.Sequence {
			next = s
		}
	}
	return next, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
