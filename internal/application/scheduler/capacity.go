package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// CalculateProductionCapacity aggregates available labor for a line on a
// date+shift. Total hours are the rostered head count times the configured
// shift length; utilization divides committed hours by that, guarded for an
// empty roster.
func (s *Scheduler) CalculateProductionCapacity(ctx context.Context, lineID string, date time.Time, shift entity.Shift) (*dto.ProductionCapacity, error) {
	line, err := s.lines.GetByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("load line %s: %w", lineID, err)
	}
	if line == nil {
		return nil, fmt.Errorf("line %s: %w", lineID, domain.ErrNotFound)
	}

	pc := &dto.ProductionCapacity{
		LineID: lineID,
		Date:   date,
		Shift:  string(shift),
	}
	if !line.IsActive {
		return pc, nil
	}

	stations, err := s.stations.ListByLine(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	activeStations := 0
	effSum := decimal.Zero
	for _, st := range stations {
		if st.IsActive {
			activeStations++
			effSum = effSum.Add(st.Efficiency)
		}
	}
	if activeStations > 0 {
		pc.Efficiency = effSum.Div(decimal.NewFromInt(int64(activeStations))).Round(4)
	}

	allocs, err := s.allocations.ListByDateShift(ctx, date, shift)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	pc.WorkerCount = len(allocs)

	shiftHours := decimal.NewFromFloat(s.cfg.HoursForShift(string(shift)))
	pc.TotalHours = decimal.NewFromInt(int64(pc.WorkerCount)).Mul(shiftHours)

	committed, err := s.assignments.ListByDateShift(ctx, date, shift)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	for _, a := range committed {
		pc.AssignedHours = pc.AssignedHours.Add(a.Hours)
	}
	pc.AvailableHours = decimal.Max(decimal.Zero, pc.TotalHours.Sub(pc.AssignedHours))

	if pc.TotalHours.IsPositive() {
		pc.UtilizationRate = pc.AssignedHours.Div(pc.TotalHours).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return pc, nil
}

// GetWorkerCapacity returns one worker's remaining hours for a date+shift.
// No roster entry means not available, zero hours.
func (s *Scheduler) GetWorkerCapacity(ctx context.Context, workerID string, date time.Time, shift entity.Shift) (*dto.WorkerCapacity, error) {
	wc := &dto.WorkerCapacity{
		WorkerID: workerID,
		Date:     date,
		Shift:    string(shift),
	}

	alloc, err := s.allocations.Get(ctx, workerID, date, shift)
	if err != nil {
		return nil, fmt.Errorf("load allocation: %w", err)
	}
	if alloc == nil {
		return wc, nil
	}

	committed, err := s.committedHours(ctx, workerID, date, shift)
	if err != nil {
		return nil, err
	}
	wc.AllocatedHours = alloc.HoursAllocated
	wc.AssignedHours = committed
	wc.AvailableHours = decimal.Max(decimal.Zero, alloc.HoursAllocated.Sub(committed))
	wc.IsAvailable = wc.AvailableHours.IsPositive()
	return wc, nil
}
