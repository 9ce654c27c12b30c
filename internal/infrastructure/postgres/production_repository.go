package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var (
	_ repository.ProductionLineRepository     = (*ProductionLineRepo)(nil)
	_ repository.WorkStationRepository        = (*WorkStationRepo)(nil)
	_ repository.ProductionScheduleRepository = (*ProductionScheduleRepo)(nil)
)

// ProductionLineRepo ProductionLineRepository over PostgreSQL.
type ProductionLineRepo struct {
	q Querier
}

// NewProductionLineRepository builds the adapter. Pass a pool or tx.
func NewProductionLineRepository(q Querier) *ProductionLineRepo {
	return &ProductionLineRepo{q: q}
}

func (r *ProductionLineRepo) GetByID(ctx context.Context, id string) (*entity.ProductionLine, error) {
	var l entity.ProductionLine
	err := withRetry(ctx, func() error {
		query := `SELECT id, name, is_active FROM production_lines WHERE id = $1`
		err := r.q.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.IsActive)
		if errors.Is(err, pgx.ErrNoRows) {
			l.ID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get production line: %w", err)
	}
	if l.ID == "" {
		return nil, nil
	}
	return &l, nil
}

// WorkStationRepo WorkStationRepository over PostgreSQL.
type WorkStationRepo struct {
	q Querier
}

// NewWorkStationRepository builds the adapter. Pass a pool or tx.
func NewWorkStationRepository(q Querier) *WorkStationRepo {
	return &WorkStationRepo{q: q}
}

func (r *WorkStationRepo) ListByLine(ctx context.Context, lineID string) ([]*entity.WorkStation, error) {
	var out []*entity.WorkStation
	err := withRetry(ctx, func() error {
		query := `
			SELECT id, line_id, name, is_active, efficiency
			FROM work_stations WHERE line_id = $1 ORDER BY id`
		rows, err := r.q.Query(ctx, query, lineID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var s entity.WorkStation
			if err := rows.Scan(&s.ID, &s.LineID, &s.Name, &s.IsActive, &s.Efficiency); err != nil {
				return err
			}
			out = append(out, &s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list work stations: %w", err)
	}
	return out, nil
}

// ProductionScheduleRepo ProductionScheduleRepository over PostgreSQL.
type ProductionScheduleRepo struct {
	q Querier
}

// NewProductionScheduleRepository builds the adapter. Pass a pool or tx.
func NewProductionScheduleRepository(q Querier) *ProductionScheduleRepo {
	return &ProductionScheduleRepo{q: q}
}

const scheduleColumns = `id, order_id, line_id, worker_id, required_skill, shift, status,
	planned_start, planned_end, actual_start, actual_end, planned_hours, actual_hours,
	units_produced, units_defective, material_cost, completed_on_time`

func scanSchedule(row pgx.Row, s *entity.ProductionSchedule) error {
	return row.Scan(
		&s.ID, &s.OrderID, &s.LineID, &s.WorkerID, &s.RequiredSkill, &s.Shift, &s.Status,
		&s.PlannedStart, &s.PlannedEnd, &s.ActualStart, &s.ActualEnd, &s.PlannedHours, &s.ActualHours,
		&s.UnitsProduced, &s.UnitsDefective, &s.MaterialCost, &s.CompletedOnTime,
	)
}

func (r *ProductionScheduleRepo) GetByID(ctx context.Context, id string) (*entity.ProductionSchedule, error) {
	var s entity.ProductionSchedule
	err := withRetry(ctx, func() error {
		query := `SELECT ` + scheduleColumns + ` FROM production_schedules WHERE id = $1`
		err := scanSchedule(r.q.QueryRow(ctx, query, id), &s)
		if errors.Is(err, pgx.ErrNoRows) {
			s.ID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if s.ID == "" {
		return nil, nil
	}
	return &s, nil
}

func (r *ProductionScheduleRepo) List(ctx context.Context, f repository.ScheduleFilter) ([]*entity.ProductionSchedule, error) {
	where := ""
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		cond = cond + "$" + strconv.Itoa(len(args))
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if !f.Date.IsZero() {
		add("planned_start::date = ", f.Date)
	}
	if f.LineID != "" {
		add("line_id = ", f.LineID)
	}
	if f.WorkerID != "" {
		add("worker_id = ", f.WorkerID)
	}

	var out []*entity.ProductionSchedule
	err := withRetry(ctx, func() error {
		query := `SELECT ` + scheduleColumns + ` FROM production_schedules` + where + ` ORDER BY id`
		rows, err := r.q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var s entity.ProductionSchedule
			if err := scanSchedule(rows, &s); err != nil {
				return err
			}
			out = append(out, &s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (r *ProductionScheduleRepo) Update(ctx context.Context, s *entity.ProductionSchedule) error {
	err := withRetry(ctx, func() error {
		query := `
			UPDATE production_schedules SET
				worker_id = $2, required_skill = $3, shift = $4, status = $5,
				planned_start = $6, planned_end = $7, actual_start = $8, actual_end = $9,
				planned_hours = $10, actual_hours = $11, units_produced = $12,
				units_defective = $13, material_cost = $14, completed_on_time = $15
			WHERE id = $1`
		_, err := r.q.Exec(ctx, query,
			s.ID, s.WorkerID, s.RequiredSkill, s.Shift, s.Status,
			s.PlannedStart, s.PlannedEnd, s.ActualStart, s.ActualEnd,
			s.PlannedHours, s.ActualHours, s.UnitsProduced,
			s.UnitsDefective, s.MaterialCost, s.CompletedOnTime,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}
