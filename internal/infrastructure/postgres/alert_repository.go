package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo AlertRepository over PostgreSQL.
type AlertRepo struct {
	db Querier
}

// NewAlertRepository builds the adapter.
func NewAlertRepository(db Querier) *AlertRepo {
	return &AlertRepo{db: db}
}

const alertColumns = `id, type, severity, title, message, workflow_id, order_id, is_read, expires_at, created_at`

func scanAlert(row pgx.Row, a *entity.ProductionAlert) error {
	return row.Scan(
		&a.ID, &a.Type, &a.Severity, &a.Title, &a.Message,
		&a.WorkflowID, &a.OrderID, &a.IsRead, &a.ExpiresAt, &a.CreatedAt,
	)
}

func (r *AlertRepo) Create(ctx context.Context, a *entity.ProductionAlert) error {
	err := withRetry(ctx, func() error {
		query := `
			INSERT INTO production_alerts (` + alertColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := r.db.Exec(ctx, query,
			a.ID, a.Type, a.Severity, a.Title, a.Message,
			a.WorkflowID, a.OrderID, a.IsRead, a.ExpiresAt, a.CreatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("alert %s: %w", a.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *AlertRepo) ListActive(ctx context.Context, now time.Time) ([]*entity.ProductionAlert, error) {
	var out []*entity.ProductionAlert
	err := withRetry(ctx, func() error {
		// A zero expires_at means the alert never expires.
		query := `
			SELECT ` + alertColumns + ` FROM production_alerts
			WHERE expires_at < '1000-01-01' OR expires_at > $1
			ORDER BY created_at DESC`
		rows, err := r.db.Query(ctx, query, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var a entity.ProductionAlert
			if err := scanAlert(rows, &a); err != nil {
				return err
			}
			out = append(out, &a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	return out, nil
}

func (r *AlertRepo) MarkRead(ctx context.Context, id string) error {
	var tag int64
	err := withRetry(ctx, func() error {
		ct, err := r.db.Exec(ctx, `UPDATE production_alerts SET is_read = TRUE WHERE id = $1`, id)
		if err != nil {
			return err
		}
		tag = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if tag == 0 {
		return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
