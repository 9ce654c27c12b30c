package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// DetectBottlenecks compares each step's actual runtime against its plan. A
// step over the configured ratio is flagged, with severity escalating by how
// far over it runs; a stage whose ready queue exceeds the length threshold
// is flagged as well. Results are computed per run, never stored.
func (e *Engine) DetectBottlenecks(ctx context.Context, workflowID string) ([]entity.BottleneckAnalysis, error) {
	w, err := e.getInstance(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	steps, err := e.workflows.ListSteps(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}

	now := time.Now()
	var found []entity.BottleneckAnalysis

	stepByID := make(map[string]*entity.WorkflowStep, len(steps))
	for _, s := range steps {
		stepByID[s.ID] = s
	}

	readyQueue := 0
	for _, s := range steps {
		if s.Status != entity.StepPlanned {
			continue
		}
		ready := true
		for _, depID := range s.Dependencies {
			if dep := stepByID[depID]; dep == nil || dep.Status != entity.StepCompleted {
				ready = false
				break
			}
		}
		if ready {
			readyQueue++
		}
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bottleneck detection: %w", domain.ErrTimeout)
		}

		actual := s.ActualDuration(now)
		if actual == 0 || !s.EstimatedHours.IsPositive() {
			continue
		}
		planned := time.Duration(s.EstimatedHours.InexactFloat64() * float64(time.Hour))
		ratio := float64(actual) / float64(planned)

		overRatio := ratio > e.cfg.BottleneckRatio
		queued := readyQueue > e.cfg.QueueThreshold
		if !overRatio && !queued {
			continue
		}

		b := entity.BottleneckAnalysis{
			WorkflowID:     w.ID,
			StepID:         s.ID,
			Stage:          s.Stage,
			Severity:       severityForRatio(ratio),
			OverrunRatio:   ratio,
			EstimatedDelay: actual - planned,
			AffectedOrders: []string{w.OrderID},
		}
		switch {
		case overRatio && queued:
			b.Cause = fmt.Sprintf("step running %.1fx plan with %d steps queued behind", ratio, readyQueue)
		case overRatio:
			b.Cause = fmt.Sprintf("step running %.1fx its planned duration", ratio)
		default:
			b.Cause = fmt.Sprintf("%d ready steps queued behind %s", readyQueue, s.Stage)
		}
		found = append(found, b)

		e.bus.Publish(Event{
			Type:       EventBottleneckDetected,
			WorkflowID: w.ID,
			OrderID:    w.OrderID,
			StepID:     s.ID,
			Stage:      string(s.Stage),
			Detail: map[string]string{
				"severity": string(b.Severity),
				"cause":    b.Cause,
			},
		})
		if b.Severity == entity.SeverityHigh || b.Severity == entity.SeverityCritical {
			e.createAlert(ctx, &entity.ProductionAlert{
				Type:       entity.AlertBottleneck,
				Severity:   b.Severity,
				Title:      fmt.Sprintf("Bottleneck at %s", s.Stage),
				Message:    b.Cause,
				WorkflowID: w.ID,
				OrderID:    w.OrderID,
			})
		}
	}
	return found, nil
}

// DetectBottlenecksAll fans detection out over every active workflow. The
// report is all-or-nothing: a caller deadline fails the whole call with
// ErrTimeout rather than returning a partial map.
func (e *Engine) DetectBottlenecksAll(ctx context.Context) (map[string][]entity.BottleneckAnalysis, error) {
	instances, err := e.workflows.ListActiveInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active workflows: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	var mu sync.Mutex
	out := make(map[string][]entity.BottleneckAnalysis, len(instances))
	for _, w := range instances {
		w := w
		g.Go(func() error {
			found, err := e.DetectBottlenecks(gctx, w.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			out[w.ID] = found
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// severityForRatio maps an actual/planned overrun ratio onto the four-level
// scale: LOW under 1.2x, MEDIUM under 1.5x, HIGH under 2x, CRITICAL beyond.
func severityForRatio(ratio float64) entity.Severity {
	switch {
	case ratio >= 2.0:
		return entity.SeverityCritical
	case ratio >= 1.5:
		return entity.SeverityHigh
	case ratio >= 1.2:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}
