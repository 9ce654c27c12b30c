package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var (
	_ repository.EmployeeRepository         = (*EmployeeRepo)(nil)
	_ repository.WorkerAllocationRepository = (*WorkerAllocationRepo)(nil)
	_ repository.WorkerAssignmentRepository = (*WorkerAssignmentRepo)(nil)
)

// EmployeeRepo EmployeeRepository over PostgreSQL.
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository builds the adapter. Pass a pool or tx.
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	var e entity.Employee
	err := withRetry(ctx, func() error {
		query := `SELECT id, name, base_salary, is_active FROM employees WHERE id = $1`
		err := r.q.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.BaseSalary, &e.IsActive)
		if errors.Is(err, pgx.ErrNoRows) {
			e.ID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if e.ID == "" {
		return nil, nil
	}
	return &e, nil
}

func (r *EmployeeRepo) ListActive(ctx context.Context) ([]*entity.Employee, error) {
	var out []*entity.Employee
	err := withRetry(ctx, func() error {
		query := `SELECT id, name, base_salary, is_active FROM employees WHERE is_active ORDER BY id`
		rows, err := r.q.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var e entity.Employee
			if err := rows.Scan(&e.ID, &e.Name, &e.BaseSalary, &e.IsActive); err != nil {
				return err
			}
			out = append(out, &e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return out, nil
}

// WorkerAllocationRepo WorkerAllocationRepository over PostgreSQL.
type WorkerAllocationRepo struct {
	q Querier
}

// NewWorkerAllocationRepository builds the adapter. Pass a pool or tx.
func NewWorkerAllocationRepository(q Querier) *WorkerAllocationRepo {
	return &WorkerAllocationRepo{q: q}
}

const allocationColumns = `worker_id, allocation_date, shift, hours_allocated, skill_level, hourly_rate`

func (r *WorkerAllocationRepo) Get(ctx context.Context, workerID string, date time.Time, shift entity.Shift) (*entity.WorkerAllocation, error) {
	var a entity.WorkerAllocation
	err := withRetry(ctx, func() error {
		query := `
			SELECT ` + allocationColumns + `
			FROM worker_allocations
			WHERE worker_id = $1 AND allocation_date = $2::date AND shift = $3`
		err := r.q.QueryRow(ctx, query, workerID, date, shift).Scan(
			&a.WorkerID, &a.Date, &a.Shift, &a.HoursAllocated, &a.SkillLevel, &a.HourlyRate,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			a.WorkerID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	if a.WorkerID == "" {
		return nil, nil
	}
	return &a, nil
}

func (r *WorkerAllocationRepo) ListByDateShift(ctx context.Context, date time.Time, shift entity.Shift) ([]*entity.WorkerAllocation, error) {
	var out []*entity.WorkerAllocation
	err := withRetry(ctx, func() error {
		query := `
			SELECT ` + allocationColumns + `
			FROM worker_allocations
			WHERE allocation_date = $1::date AND shift = $2
			ORDER BY worker_id`
		rows, err := r.q.Query(ctx, query, date, shift)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var a entity.WorkerAllocation
			if err := rows.Scan(&a.WorkerID, &a.Date, &a.Shift, &a.HoursAllocated, &a.SkillLevel, &a.HourlyRate); err != nil {
				return err
			}
			out = append(out, &a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return out, nil
}

// WorkerAssignmentRepo WorkerAssignmentRepository over PostgreSQL. Commit
// needs its own transaction, so this adapter takes the pool rather than a
// Querier.
type WorkerAssignmentRepo struct {
	pool *pgxpool.Pool
}

// NewWorkerAssignmentRepository builds the adapter.
func NewWorkerAssignmentRepository(pool *pgxpool.Pool) *WorkerAssignmentRepo {
	return &WorkerAssignmentRepo{pool: pool}
}

const assignmentColumns = `id, worker_id, work_station_id, schedule_id, assigned_date, shift, assigned_hours, created_at`

func (r *WorkerAssignmentRepo) ListByWorkerDateShift(ctx context.Context, workerID string, date time.Time, shift entity.Shift) ([]*entity.WorkerAssignment, error) {
	return r.list(ctx, `WHERE worker_id = $1 AND assigned_date = $2::date AND shift = $3`, workerID, date, shift)
}

func (r *WorkerAssignmentRepo) ListByDateShift(ctx context.Context, date time.Time, shift entity.Shift) ([]*entity.WorkerAssignment, error) {
	return r.list(ctx, `WHERE assigned_date = $1::date AND shift = $2`, date, shift)
}

func (r *WorkerAssignmentRepo) list(ctx context.Context, where string, args ...any) ([]*entity.WorkerAssignment, error) {
	var out []*entity.WorkerAssignment
	err := withRetry(ctx, func() error {
		query := `SELECT ` + assignmentColumns + ` FROM worker_assignments ` + where + ` ORDER BY created_at, id`
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var a entity.WorkerAssignment
			if err := rows.Scan(&a.ID, &a.WorkerID, &a.WorkStationID, &a.ScheduleID, &a.Date, &a.Shift, &a.Hours, &a.CreatedAt); err != nil {
				return err
			}
			out = append(out, &a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return out, nil
}

// Commit inserts the assignment after re-validating the worker's committed
// hours inside a transaction. The worker's roster row is locked FOR UPDATE,
// which serializes commits per worker/date/shift; a commit that would push
// committed hours past the allocation loses with ErrConflict.
func (r *WorkerAssignmentRepo) Commit(ctx context.Context, a *entity.WorkerAssignment, allocatedHours decimal.Decimal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockQuery := `
		SELECT hours_allocated FROM worker_allocations
		WHERE worker_id = $1 AND allocation_date = $2::date AND shift = $3
		FOR UPDATE`
	var allocated decimal.Decimal
	err = tx.QueryRow(ctx, lockQuery, a.WorkerID, a.Date, a.Shift).Scan(&allocated)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("worker %s not rostered: %w", a.WorkerID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("lock allocation: %w", err)
	}

	sumQuery := `
		SELECT COALESCE(SUM(assigned_hours), 0) FROM worker_assignments
		WHERE worker_id = $1 AND assigned_date = $2::date AND shift = $3`
	var committed decimal.Decimal
	if err := tx.QueryRow(ctx, sumQuery, a.WorkerID, a.Date, a.Shift).Scan(&committed); err != nil {
		return fmt.Errorf("sum committed hours: %w", err)
	}
	if committed.Add(a.Hours).GreaterThan(allocated) {
		return fmt.Errorf("worker %s over-committed for %s %s: %w",
			a.WorkerID, a.Date.Format("2006-01-02"), a.Shift, domain.ErrConflict)
	}

	insertQuery := `
		INSERT INTO worker_assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.Exec(ctx, insertQuery,
		a.ID, a.WorkerID, a.WorkStationID, a.ScheduleID, a.Date, a.Shift, a.Hours, a.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit assignment tx: %w", err)
	}
	return nil
}
