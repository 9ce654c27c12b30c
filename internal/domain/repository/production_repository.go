package repository

import (
	"context"
	"time"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// ProductionLineRepository factory lines.
type ProductionLineRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ProductionLine, error)
}

// WorkStationRepository stations grouped by line.
type WorkStationRepository interface {
	ListByLine(ctx context.Context, lineID string) ([]*entity.WorkStation, error)
}

// ScheduleFilter narrows a schedule listing. Zero values mean "any".
type ScheduleFilter struct {
	Date     time.Time
	LineID   string
	WorkerID string
}

// ProductionScheduleRepository booked production slots.
type ProductionScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ProductionSchedule, error)
	List(ctx context.Context, f ScheduleFilter) ([]*entity.ProductionSchedule, error)
	Update(ctx context.Context, s *entity.ProductionSchedule) error
}
