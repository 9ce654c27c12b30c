package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// CreateAlert persists an operator notification. A zero expiry defaults to
// the configured TTL.
func (e *Engine) CreateAlert(ctx context.Context, a *entity.ProductionAlert) error {
	if a.Type == "" || a.Title == "" {
		return fmt.Errorf("alert type and title required: %w", domain.ErrValidation)
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.ExpiresAt.IsZero() && e.cfg.AlertTTLHours > 0 {
		a.ExpiresAt = a.CreatedAt.Add(time.Duration(e.cfg.AlertTTLHours) * time.Hour)
	}
	if err := e.alerts.Create(ctx, a); err != nil {
		return fmt.Errorf("persist alert: %w", err)
	}
	return nil
}

// ActiveAlerts lists unexpired alerts, newest first.
func (e *Engine) ActiveAlerts(ctx context.Context) ([]dto.AlertView, error) {
	alerts, err := e.alerts.ListActive(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	out := make([]dto.AlertView, 0, len(alerts))
	for _, a := range alerts {
		v := dto.AlertView{
			ID:         a.ID,
			Type:       string(a.Type),
			Severity:   string(a.Severity),
			Title:      a.Title,
			Message:    a.Message,
			WorkflowID: a.WorkflowID,
			OrderID:    a.OrderID,
			IsRead:     a.IsRead,
			CreatedAt:  a.CreatedAt,
		}
		if !a.ExpiresAt.IsZero() {
			t := a.ExpiresAt
			v.ExpiresAt = &t
		}
		out = append(out, v)
	}
	return out, nil
}

// MarkAlertRead flags an alert as seen.
func (e *Engine) MarkAlertRead(ctx context.Context, alertID string) error {
	if err := e.alerts.MarkRead(ctx, alertID); err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	return nil
}

// createAlert is the engine's best-effort internal path: alert persistence
// failures are logged, never propagated into the transition that raised
// them.
func (e *Engine) createAlert(ctx context.Context, a *entity.ProductionAlert) {
	if err := e.CreateAlert(ctx, a); err != nil {
		e.log.Error().Err(err).Str("type", string(a.Type)).Msg("alert not persisted")
	}
}

func (e *Engine) raiseMaterialAlert(ctx context.Context, w *entity.WorkflowInstance, r dto.MRPResult) {
	e.createAlert(ctx, &entity.ProductionAlert{
		Type:       entity.AlertMaterial,
		Severity:   entity.SeverityHigh,
		Title:      fmt.Sprintf("Material shortfall: %s", r.MaterialName),
		Message:    fmt.Sprintf("Short %s %s for order %s", r.Shortfall.String(), r.Unit, w.OrderID),
		WorkflowID: w.ID,
		OrderID:    w.OrderID,
	})
}
