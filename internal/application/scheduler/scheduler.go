package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
	"github.com/sorbetes/garment-ops/pkg/config"
	"github.com/sorbetes/garment-ops/pkg/logger"
)

// Scheduler matches workers to production steps under skill and availability
// constraints. Assignment commits go through the repository's atomic
// check-then-commit; the scheduler never double-books silently.
type Scheduler struct {
	employees   repository.EmployeeRepository
	allocations repository.WorkerAllocationRepository
	assignments repository.WorkerAssignmentRepository
	lines       repository.ProductionLineRepository
	stations    repository.WorkStationRepository
	schedules   repository.ProductionScheduleRepository
	cfg         config.PlanningConfig
	log         *logger.Logger
}

// NewScheduler builds the scheduler.
func NewScheduler(
	employees repository.EmployeeRepository,
	allocations repository.WorkerAllocationRepository,
	assignments repository.WorkerAssignmentRepository,
	lines repository.ProductionLineRepository,
	stations repository.WorkStationRepository,
	schedules repository.ProductionScheduleRepository,
	cfg config.PlanningConfig,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		employees:   employees,
		allocations: allocations,
		assignments: assignments,
		lines:       lines,
		stations:    stations,
		schedules:   schedules,
		cfg:         cfg,
		log:         log,
	}
}

// SkillMatch is the ratio of a worker's skill ordinal to the required
// ordinal, capped at 1. A zero required ordinal never matches.
func SkillMatch(worker, required entity.SkillLevel) float64 {
	w, r := worker.Ordinal(), required.Ordinal()
	if w == 0 || r == 0 {
		return 0
	}
	return math.Min(1, float64(w)/float64(r))
}

// minSkillMatch is the rejection boundary: below half the required skill a
// worker cannot take the task.
const minSkillMatch = 0.5

// AssignWorkerToTask validates the worker against the task's skill and time
// constraints and commits the assignment. Business rejections (skill, time,
// lost race) come back as a REJECTED result with up to five alternatives;
// errors are reserved for unknown workers, bad input and infrastructure.
func (s *Scheduler) AssignWorkerToTask(ctx context.Context, req dto.AssignmentRequest) (*dto.WorkerAssignmentResult, error) {
	if err := validateAssignmentRequest(req); err != nil {
		return nil, err
	}

	worker, err := s.employees.GetByID(ctx, req.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("load worker %s: %w", req.WorkerID, err)
	}
	if worker == nil || !worker.IsActive {
		return nil, fmt.Errorf("worker %s: %w", req.WorkerID, domain.ErrNotFound)
	}

	shift := entity.Shift(req.Shift)
	required := entity.SkillLevel(req.RequiredSkill)

	alloc, err := s.allocations.Get(ctx, req.WorkerID, req.Date, shift)
	if err != nil {
		return nil, fmt.Errorf("load allocation: %w", err)
	}
	if alloc == nil {
		// Not rostered for the shift at all.
		return s.rejected(ctx, req, 0, dto.ReasonUnavailable)
	}

	match := SkillMatch(alloc.SkillLevel, required)
	if match < minSkillMatch {
		return s.rejected(ctx, req, match, dto.ReasonInsufficientSkill)
	}

	committed, err := s.committedHours(ctx, req.WorkerID, req.Date, shift)
	if err != nil {
		return nil, err
	}
	if committed.Add(req.EstimatedHours).GreaterThan(alloc.HoursAllocated) {
		return s.rejected(ctx, req, match, dto.ReasonUnavailable)
	}

	assignment := &entity.WorkerAssignment{
		ID:            uuid.New().String(),
		WorkerID:      req.WorkerID,
		WorkStationID: req.WorkStationID,
		ScheduleID:    req.ScheduleID,
		Date:          req.Date,
		Shift:         shift,
		Hours:         req.EstimatedHours,
		CreatedAt:     time.Now(),
	}

	err = s.assignments.Commit(ctx, assignment, alloc.HoursAllocated)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a concurrent race: re-validate against fresh data and retry
		// exactly once.
		committed, err = s.committedHours(ctx, req.WorkerID, req.Date, shift)
		if err != nil {
			return nil, err
		}
		if committed.Add(req.EstimatedHours).GreaterThan(alloc.HoursAllocated) {
			return s.rejected(ctx, req, match, dto.ReasonUnavailable)
		}
		assignment.ID = uuid.New().String()
		err = s.assignments.Commit(ctx, assignment, alloc.HoursAllocated)
		if errors.Is(err, domain.ErrConflict) {
			return s.rejected(ctx, req, match, dto.ReasonConflict)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("commit assignment: %w", err)
	}

	start, end := s.scheduleWindow(req.Date, req.EstimatedHours)
	s.log.Info().
		Str("worker_id", req.WorkerID).
		Str("schedule_id", req.ScheduleID).
		Str("hours", req.EstimatedHours.String()).
		Msg("worker assigned")

	return &dto.WorkerAssignmentResult{
		Status:       dto.AssignmentCommitted,
		AssignmentID: assignment.ID,
		WorkerID:     req.WorkerID,
		SkillMatch:   match,
		Start:        start,
		End:          end,
	}, nil
}

// scheduleWindow spreads estimated hours over calendar days at the workday
// length.
func (s *Scheduler) scheduleWindow(start time.Time, hours decimal.Decimal) (time.Time, time.Time) {
	days := int(math.Ceil(hours.InexactFloat64() / s.cfg.WorkdayHours))
	if days < 1 {
		days = 1
	}
	return start, start.AddDate(0, 0, days)
}

func (s *Scheduler) rejected(ctx context.Context, req dto.AssignmentRequest, match float64, reason string) (*dto.WorkerAssignmentResult, error) {
	alts, err := s.alternatives(ctx, req)
	if err != nil {
		return nil, err
	}
	return &dto.WorkerAssignmentResult{
		Status:       dto.AssignmentRejected,
		WorkerID:     req.WorkerID,
		SkillMatch:   match,
		Reason:       reason,
		Alternatives: alts,
	}, nil
}

// alternatives ranks other rostered workers who satisfy both the skill and
// the time constraint, by skill match then available hours. Worker id breaks
// ties so the list is stable.
func (s *Scheduler) alternatives(ctx context.Context, req dto.AssignmentRequest) ([]dto.AlternativeWorker, error) {
	shift := entity.Shift(req.Shift)
	required := entity.SkillLevel(req.RequiredSkill)

	allocs, err := s.allocations.ListByDateShift(ctx, req.Date, shift)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}

	var out []dto.AlternativeWorker
	for _, a := range allocs {
		if a.WorkerID == req.WorkerID {
			continue
		}
		match := SkillMatch(a.SkillLevel, required)
		if match < minSkillMatch {
			continue
		}
		committed, err := s.committedHours(ctx, a.WorkerID, req.Date, shift)
		if err != nil {
			return nil, err
		}
		available := decimal.Max(decimal.Zero, a.HoursAllocated.Sub(committed))
		if available.LessThan(req.EstimatedHours) {
			continue
		}
		out = append(out, dto.AlternativeWorker{
			WorkerID:       a.WorkerID,
			SkillLevel:     string(a.SkillLevel),
			SkillMatch:     match,
			AvailableHours: available,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SkillMatch != out[j].SkillMatch {
			return out[i].SkillMatch > out[j].SkillMatch
		}
		if !out[i].AvailableHours.Equal(out[j].AvailableHours) {
			return out[i].AvailableHours.GreaterThan(out[j].AvailableHours)
		}
		return out[i].WorkerID < out[j].WorkerID
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out, nil
}

func (s *Scheduler) committedHours(ctx context.Context, workerID string, date time.Time, shift entity.Shift) (decimal.Decimal, error) {
	existing, err := s.assignments.ListByWorkerDateShift(ctx, workerID, date, shift)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list assignments: %w", err)
	}
	sum := decimal.Zero
	for _, a := range existing {
		sum = sum.Add(a.Hours)
	}
	return sum, nil
}

func validateAssignmentRequest(req dto.AssignmentRequest) error {
	switch {
	case req.WorkerID == "":
		return fmt.Errorf("worker id missing: %w", domain.ErrValidation)
	case !req.EstimatedHours.IsPositive():
		return fmt.Errorf("estimated hours must be positive: %w", domain.ErrValidation)
	case req.Date.IsZero():
		return fmt.Errorf("date missing: %w", domain.ErrValidation)
	case entity.SkillLevel(req.RequiredSkill).Ordinal() == 0:
		return fmt.Errorf("unknown required skill %q: %w", req.RequiredSkill, domain.ErrValidation)
	}
	switch entity.Shift(req.Shift) {
	case entity.ShiftMorning, entity.ShiftAfternoon, entity.ShiftNight:
		return nil
	default:
		return fmt.Errorf("unknown shift %q: %w", req.Shift, domain.ErrValidation)
	}
}
