package mrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// CreatePurchaseRequisition emits a planned receipt for the material. The
// order date is derived backwards from the required date by the material's
// lead time (config default when the record carries none). This is the only
// code path that writes supply.
func (p *Planner) CreatePurchaseRequisition(ctx context.Context, in dto.CreateRequisitionRequest) (*dto.RequisitionResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("requisition quantity must be positive: %w", domain.ErrValidation)
	}
	if in.RequiredDate.IsZero() {
		return nil, fmt.Errorf("requisition required date missing: %w", domain.ErrValidation)
	}

	material, err := p.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, fmt.Errorf("load material %s: %w", in.MaterialID, err)
	}
	if material == nil {
		return nil, fmt.Errorf("material %s: %w", in.MaterialID, domain.ErrNotFound)
	}

	leadDays := material.LeadTimeDays
	if leadDays <= 0 {
		leadDays = p.cfg.DefaultLeadTimeDays
	}
	orderDate := in.RequiredDate.AddDate(0, 0, -leadDays)

	tx := &entity.MaterialTransaction{
		ID:            uuid.New().String(),
		MaterialID:    in.MaterialID,
		Type:          entity.TransactionIn,
		Quantity:      in.Quantity,
		UnitCost:      material.UnitCost,
		ReferenceType: "PURCHASE_REQUISITION",
		Note:          in.Justification,
		Status:        entity.SupplyPlanned,
		PlannedDate:   in.RequiredDate,
		CreatedAt:     time.Now(),
	}
	if err := p.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create planned receipt: %w", err)
	}

	p.log.Info().
		Str("material_id", in.MaterialID).
		Str("quantity", in.Quantity.String()).
		Time("order_date", orderDate).
		Msg("purchase requisition created")

	return &dto.RequisitionResult{
		RequisitionID: tx.ID,
		MaterialID:    in.MaterialID,
		Quantity:      in.Quantity,
		OrderDate:     orderDate,
		RequiredDate:  in.RequiredDate,
		EstimatedCost: in.Quantity.Mul(material.UnitCost),
	}, nil
}
