package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// candidate is one rostered worker scored against the optimization goals.
type candidate struct {
	workerID   string
	skillLevel entity.SkillLevel
	skillMatch float64
	hourlyRate decimal.Decimal
	allocated  decimal.Decimal
	committed  decimal.Decimal
	available  decimal.Decimal
	score      float64
}

// OptimizeProductionSchedule re-assigns the given schedules to rostered
// workers that score better against the weighted goals. Every move still
// passes the assignment rule: a candidate below the skill boundary or
// without the hours is never considered, and the commit path re-validates
// availability, so the optimizer cannot produce an invalid assignment.
func (s *Scheduler) OptimizeProductionSchedule(ctx context.Context, scheduleIDs []string, goals dto.OptimizationGoals) (*dto.ProductionScheduleOptimization, error) {
	norm := goals.Normalize()
	out := &dto.ProductionScheduleOptimization{}

	for _, id := range scheduleIDs {
		sch, err := s.schedules.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load schedule %s: %w", id, err)
		}
		if sch == nil {
			return nil, fmt.Errorf("schedule %s: %w", id, domain.ErrNotFound)
		}
		if sch.Status == entity.ScheduleCompleted || sch.Status == entity.ScheduleCancelled {
			out.Unchanged = append(out.Unchanged, id)
			continue
		}

		change, err := s.improveSchedule(ctx, sch, norm)
		if err != nil {
			return nil, err
		}
		if change == nil {
			out.Unchanged = append(out.Unchanged, id)
			continue
		}
		out.Changes = append(out.Changes, *change)
	}
	return out, nil
}

func (s *Scheduler) improveSchedule(ctx context.Context, sch *entity.ProductionSchedule, goals dto.OptimizationGoals) (*dto.ScheduleChange, error) {
	date := sch.PlannedStart
	candidates, err := s.scoreCandidates(ctx, sch, goals)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}

	// Baseline is the current worker's score; an unstaffed schedule is
	// improved by any valid candidate.
	baseline := -1.0
	var current *candidate
	for i := range candidates {
		if candidates[i].workerID == sch.WorkerID {
			current = &candidates[i]
			baseline = candidates[i].score
		}
	}

	var best *candidate
	for i := range candidates {
		c := &candidates[i]
		if c.workerID == sch.WorkerID {
			continue
		}
		if c.score <= baseline {
			continue
		}
		if best == nil || c.score > best.score ||
			(c.score == best.score && c.workerID < best.workerID) {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}

	assignment := &entity.WorkerAssignment{
		ID:         uuid.New().String(),
		WorkerID:   best.workerID,
		ScheduleID: sch.ID,
		Date:       date,
		Shift:      sch.Shift,
		Hours:      sch.PlannedHours,
		CreatedAt:  time.Now(),
	}
	err = s.assignments.Commit(ctx, assignment, best.allocated)
	if errors.Is(err, domain.ErrConflict) {
		// Someone took the hours while we were scoring; leave the schedule
		// as it was.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("commit optimized assignment: %w", err)
	}

	fromWorker := sch.WorkerID
	newStart, newEnd := s.scheduleWindow(date, sch.PlannedHours)
	sch.WorkerID = best.workerID
	sch.PlannedStart = newStart
	sch.PlannedEnd = newEnd
	if err := s.schedules.Update(ctx, sch); err != nil {
		return nil, fmt.Errorf("update schedule %s: %w", sch.ID, err)
	}

	return &dto.ScheduleChange{
		ScheduleID:   sch.ID,
		FromWorkerID: fromWorker,
		ToWorkerID:   best.workerID,
		NewStart:     newStart,
		NewEnd:       newEnd,
		Score:        best.score,
		Improvements: improvementReasons(current, best),
	}, nil
}

// scoreCandidates scores every rostered worker who passes the assignment
// rule. Components are each normalized to 0..1 before weighting.
func (s *Scheduler) scoreCandidates(ctx context.Context, sch *entity.ProductionSchedule, goals dto.OptimizationGoals) ([]candidate, error) {
	allocs, err := s.allocations.ListByDateShift(ctx, sch.PlannedStart, sch.Shift)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}

	var out []candidate
	maxRate := decimal.Zero
	for _, a := range allocs {
		match := SkillMatch(a.SkillLevel, sch.RequiredSkill)
		if match < minSkillMatch {
			continue
		}
		committed, err := s.committedHours(ctx, a.WorkerID, sch.PlannedStart, sch.Shift)
		if err != nil {
			return nil, err
		}
		available := decimal.Max(decimal.Zero, a.HoursAllocated.Sub(committed))
		if a.WorkerID != sch.WorkerID && available.LessThan(sch.PlannedHours) {
			continue
		}
		if a.HourlyRate.GreaterThan(maxRate) {
			maxRate = a.HourlyRate
		}
		out = append(out, candidate{
			workerID:   a.WorkerID,
			skillLevel: a.SkillLevel,
			skillMatch: match,
			hourlyRate: a.HourlyRate,
			allocated:  a.HoursAllocated,
			committed:  committed,
			available:  available,
		})
	}

	shiftHours := s.cfg.HoursForShift(string(sch.Shift))
	for i := range out {
		c := &out[i]
		timeScore := 0.0
		if shiftHours > 0 {
			timeScore = clamp01(c.available.InexactFloat64() / shiftHours)
		}
		costScore := 1.0
		if maxRate.IsPositive() {
			costScore = 1 - c.hourlyRate.Div(maxRate).InexactFloat64()
		}
		qualityScore := c.skillMatch
		balanceScore := 0.0
		if c.allocated.IsPositive() {
			balanceScore = 1 - clamp01(c.committed.Div(c.allocated).InexactFloat64())
		}
		c.score = goals.MinimizeTime*timeScore +
			goals.MinimizeCost*costScore +
			goals.MaximizeQuality*qualityScore +
			goals.BalanceWorkload*balanceScore
	}

	sort.Slice(out, func(i, j int) bool { return out[i].workerID < out[j].workerID })
	return out, nil
}

func improvementReasons(current, best *candidate) []string {
	var reasons []string
	if current == nil {
		reasons = append(reasons, fmt.Sprintf("schedule staffed with %s worker", best.skillLevel))
		return reasons
	}
	if best.hourlyRate.LessThan(current.hourlyRate) {
		reasons = append(reasons, fmt.Sprintf("lower hourly rate (%s vs %s)",
			best.hourlyRate.StringFixed(2), current.hourlyRate.StringFixed(2)))
	}
	if best.skillLevel.Ordinal() > current.skillLevel.Ordinal() {
		reasons = append(reasons, fmt.Sprintf("higher skill level (%s vs %s)",
			best.skillLevel, current.skillLevel))
	}
	if best.available.GreaterThan(current.available) {
		reasons = append(reasons, fmt.Sprintf("more available hours (%s vs %s)",
			best.available.String(), current.available.String()))
	}
	if best.committed.LessThan(current.committed) {
		reasons = append(reasons, "lighter existing workload")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "better weighted objective score")
	}
	return reasons
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
