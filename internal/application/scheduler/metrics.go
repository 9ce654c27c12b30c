package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

// GenerateProductionMetrics aggregates the day's schedules (optionally
// narrowed to a line or worker) into delivery, efficiency, quality and cost
// figures. Every ratio is guarded against a zero denominator.
func (s *Scheduler) GenerateProductionMetrics(ctx context.Context, date time.Time, lineID, workerID string) (*dto.ProductionMetrics, error) {
	schedules, err := s.schedules.List(ctx, repository.ScheduleFilter{
		Date:     date,
		LineID:   lineID,
		WorkerID: workerID,
	})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	m := &dto.ProductionMetrics{
		Date:        date,
		LineID:      lineID,
		WorkerID:    workerID,
		TotalOrders: len(schedules),
	}

	var (
		completedOnTime int64
		plannedHours    decimal.Decimal
		actualHours     decimal.Decimal
		produced        decimal.Decimal
		defects         decimal.Decimal
		materialCost    decimal.Decimal
	)
	for _, sch := range schedules {
		if sch.Status == entity.ScheduleCompleted && sch.CompletedOnTime {
			completedOnTime++
		}
		plannedHours = plannedHours.Add(sch.PlannedHours)
		actualHours = actualHours.Add(sch.ActualHours)
		produced = produced.Add(sch.UnitsProduced)
		defects = defects.Add(sch.UnitsDefective)
		materialCost = materialCost.Add(sch.MaterialCost)
	}

	hundred := decimal.NewFromInt(100)
	if m.TotalOrders > 0 {
		m.OnTimeDelivery = decimal.NewFromInt(completedOnTime).
			Div(decimal.NewFromInt(int64(m.TotalOrders))).Mul(hundred).Round(2)
	}
	if actualHours.IsPositive() {
		m.Efficiency = plannedHours.Div(actualHours).Mul(hundred).Round(2)
		m.Throughput = produced.Div(actualHours).Round(2)
	}
	if produced.IsPositive() {
		m.DefectRate = defects.Div(produced).Mul(hundred).Round(2)
	}

	labor := actualHours.Mul(decimal.NewFromFloat(s.cfg.LaborRate)).Round(2)
	overhead := actualHours.Mul(decimal.NewFromFloat(s.cfg.OverheadRate)).Round(2)
	m.Cost = dto.CostBreakdown{
		Labor:    labor,
		Overhead: overhead,
		Material: materialCost,
		Total:    labor.Add(overhead).Add(materialCost),
	}
	return m, nil
}
