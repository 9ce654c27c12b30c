package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var _ repository.WorkflowRepository = (*WorkflowRepo)(nil)

// WorkflowRepo WorkflowRepository over PostgreSQL. Create writes the
// instance and its steps in one transaction, so it takes the pool.
type WorkflowRepo struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepository builds the adapter.
func NewWorkflowRepository(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

const instanceColumns = `id, order_id, status, priority, current_stage, total_steps, completed_steps,
	start_date, estimated_end_date, actual_end_date, pause_reason, metadata, created_at`

const stepColumns = `id, workflow_id, stage, sequence, dependencies, estimated_hours, status,
	assigned_worker, planned_start, planned_end, actual_start, actual_end, quality_score, notes`

func scanInstance(row pgx.Row, w *entity.WorkflowInstance) error {
	return row.Scan(
		&w.ID, &w.OrderID, &w.Status, &w.Priority, &w.CurrentStage, &w.TotalSteps, &w.CompletedSteps,
		&w.StartDate, &w.EstimatedEndDate, &w.ActualEndDate, &w.PauseReason, &w.Metadata, &w.CreatedAt,
	)
}

func scanStep(row pgx.Row, s *entity.WorkflowStep) error {
	return row.Scan(
		&s.ID, &s.WorkflowID, &s.Stage, &s.Sequence, &s.Dependencies, &s.EstimatedHours, &s.Status,
		&s.AssignedWorker, &s.PlannedStart, &s.PlannedEnd, &s.ActualStart, &s.ActualEnd, &s.QualityScore, &s.Notes,
	)
}

func (r *WorkflowRepo) Create(ctx context.Context, w *entity.WorkflowInstance, steps []*entity.WorkflowStep) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin workflow tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	instanceQuery := `
		INSERT INTO workflow_instances (` + instanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := tx.Exec(ctx, instanceQuery,
		w.ID, w.OrderID, w.Status, w.Priority, w.CurrentStage, w.TotalSteps, w.CompletedSteps,
		w.StartDate, w.EstimatedEndDate, w.ActualEndDate, w.PauseReason, w.Metadata, w.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert workflow instance: %w", err)
	}

	stepQuery := `
		INSERT INTO workflow_steps (` + stepColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	for _, s := range steps {
		if _, err := tx.Exec(ctx, stepQuery,
			s.ID, s.WorkflowID, s.Stage, s.Sequence, s.Dependencies, s.EstimatedHours, s.Status,
			s.AssignedWorker, s.PlannedStart, s.PlannedEnd, s.ActualStart, s.ActualEnd, s.QualityScore, s.Notes,
		); err != nil {
			return fmt.Errorf("insert workflow step %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit workflow tx: %w", err)
	}
	return nil
}

func (r *WorkflowRepo) GetInstance(ctx context.Context, id string) (*entity.WorkflowInstance, error) {
	return r.getInstance(ctx, `WHERE id = $1`, id)
}

func (r *WorkflowRepo) GetInstanceByOrder(ctx context.Context, orderID string) (*entity.WorkflowInstance, error) {
	return r.getInstance(ctx, `WHERE order_id = $1`, orderID)
}

func (r *WorkflowRepo) getInstance(ctx context.Context, where, arg string) (*entity.WorkflowInstance, error) {
	var w entity.WorkflowInstance
	err := withRetry(ctx, func() error {
		query := `SELECT ` + instanceColumns + ` FROM workflow_instances ` + where
		err := scanInstance(r.pool.QueryRow(ctx, query, arg), &w)
		if errors.Is(err, pgx.ErrNoRows) {
			w.ID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get workflow instance: %w", err)
	}
	if w.ID == "" {
		return nil, nil
	}
	return &w, nil
}

func (r *WorkflowRepo) UpdateInstance(ctx context.Context, w *entity.WorkflowInstance) error {
	err := withRetry(ctx, func() error {
		query := `
			UPDATE workflow_instances SET
				status = $2, priority = $3, current_stage = $4, completed_steps = $5,
				start_date = $6, estimated_end_date = $7, actual_end_date = $8,
				pause_reason = $9, metadata = $10
			WHERE id = $1`
		_, err := r.pool.Exec(ctx, query,
			w.ID, w.Status, w.Priority, w.CurrentStage, w.CompletedSteps,
			w.StartDate, w.EstimatedEndDate, w.ActualEndDate, w.PauseReason, w.Metadata,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update workflow instance: %w", err)
	}
	return nil
}

func (r *WorkflowRepo) GetStep(ctx context.Context, stepID string) (*entity.WorkflowStep, error) {
	var s entity.WorkflowStep
	err := withRetry(ctx, func() error {
		query := `SELECT ` + stepColumns + ` FROM workflow_steps WHERE id = $1`
		err := scanStep(r.pool.QueryRow(ctx, query, stepID), &s)
		if errors.Is(err, pgx.ErrNoRows) {
			s.ID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get workflow step: %w", err)
	}
	if s.ID == "" {
		return nil, nil
	}
	return &s, nil
}

func (r *WorkflowRepo) ListSteps(ctx context.Context, workflowID string) ([]*entity.WorkflowStep, error) {
	var out []*entity.WorkflowStep
	err := withRetry(ctx, func() error {
		query := `SELECT ` + stepColumns + ` FROM workflow_steps WHERE workflow_id = $1 ORDER BY sequence`
		rows, err := r.pool.Query(ctx, query, workflowID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var s entity.WorkflowStep
			if err := scanStep(rows, &s); err != nil {
				return err
			}
			out = append(out, &s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list workflow steps: %w", err)
	}
	return out, nil
}

func (r *WorkflowRepo) UpdateStep(ctx context.Context, s *entity.WorkflowStep) error {
	err := withRetry(ctx, func() error {
		query := `
			UPDATE workflow_steps SET
				status = $2, assigned_worker = $3, planned_start = $4, planned_end = $5,
				actual_start = $6, actual_end = $7, quality_score = $8, notes = $9
			WHERE id = $1`
		_, err := r.pool.Exec(ctx, query,
			s.ID, s.Status, s.AssignedWorker, s.PlannedStart, s.PlannedEnd,
			s.ActualStart, s.ActualEnd, s.QualityScore, s.Notes,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update workflow step: %w", err)
	}
	return nil
}

func (r *WorkflowRepo) ListActiveInstances(ctx context.Context) ([]*entity.WorkflowInstance, error) {
	var out []*entity.WorkflowInstance
	err := withRetry(ctx, func() error {
		query := `
			SELECT ` + instanceColumns + ` FROM workflow_instances
			WHERE status NOT IN ('COMPLETED', 'CANCELLED')
			ORDER BY id`
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var w entity.WorkflowInstance
			if err := scanInstance(rows, &w); err != nil {
				return err
			}
			out = append(out, &w)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list active workflows: %w", err)
	}
	return out, nil
}
