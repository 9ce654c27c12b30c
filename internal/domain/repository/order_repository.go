package repository

import (
	"context"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// OrderRepository read access to customer orders. Orders are owned by the
// admin application; the planning core only reads them.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListOpen(ctx context.Context) ([]*entity.Order, error)
}
