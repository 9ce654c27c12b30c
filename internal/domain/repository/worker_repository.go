package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// EmployeeRepository production staff records.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	ListActive(ctx context.Context) ([]*entity.Employee, error)
}

// WorkerAllocationRepository shift roster: who is available on a date+shift,
// for how many hours, at what skill and rate.
type WorkerAllocationRepository interface {
	Get(ctx context.Context, workerID string, date time.Time, shift entity.Shift) (*entity.WorkerAllocation, error)
	ListByDateShift(ctx context.Context, date time.Time, shift entity.Shift) ([]*entity.WorkerAllocation, error)
}

// WorkerAssignmentRepository committed bindings of workers to schedules.
// Commit must atomically re-validate that the worker's already-committed
// hours plus the new assignment stay within allocatedHours for the
// date+shift, and fail with domain.ErrConflict when a concurrent commit won
// the race. This is the only write path for assignments.
type WorkerAssignmentRepository interface {
	ListByWorkerDateShift(ctx context.Context, workerID string, date time.Time, shift entity.Shift) ([]*entity.WorkerAssignment, error)
	ListByDateShift(ctx context.Context, date time.Time, shift entity.Shift) ([]*entity.WorkerAssignment, error)
	Commit(ctx context.Context, a *entity.WorkerAssignment, allocatedHours decimal.Decimal) error
}
