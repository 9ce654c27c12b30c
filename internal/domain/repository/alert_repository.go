package repository

import (
	"context"
	"time"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// AlertRepository operator notifications.
type AlertRepository interface {
	Create(ctx context.Context, a *entity.ProductionAlert) error
	ListActive(ctx context.Context, now time.Time) ([]*entity.ProductionAlert, error)
	MarkRead(ctx context.Context, id string) error
}
