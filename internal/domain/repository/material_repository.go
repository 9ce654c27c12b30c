package repository

import (
	"context"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// MaterialInventoryRepository stock records per material.
// Get returns (nil, nil) when the material does not exist; callers that need
// a hard failure map that to domain.ErrNotFound.
type MaterialInventoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.MaterialInventory, error)
	List(ctx context.Context) ([]*entity.MaterialInventory, error)
}

// MaterialRequirementRepository per-order bill of materials rows.
type MaterialRequirementRepository interface {
	ListByOrder(ctx context.Context, orderID string) ([]*entity.MaterialRequirement, error)
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.MaterialRequirement, error)
}

// MaterialTransactionRepository stock movements, actual and planned. This is
// the only write path for supply: the MRP's purchase requisition creates a
// planned IN transaction here.
type MaterialTransactionRepository interface {
	Create(ctx context.Context, tx *entity.MaterialTransaction) error
	ListSupplyByMaterial(ctx context.Context, materialID string) ([]*entity.MaterialTransaction, error)
}
