package mrp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

func TestCreatePurchaseRequisition(t *testing.T) {
	f := newPlannerFixture(t)
	f.materials.Put(entity.MaterialInventory{
		ID: "fabric", Unit: "m", UnitCost: decimalFromString(t, "12.50"), LeadTimeDays: 5,
	})
	required := time.Now().AddDate(0, 0, 14)

	result, err := f.planner.CreatePurchaseRequisition(context.Background(), dto.CreateRequisitionRequest{
		MaterialID:   "fabric",
		Quantity:     dec(40),
		RequiredDate: required,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RequisitionID)
	assert.Equal(t, required.AddDate(0, 0, -5), result.OrderDate)
	assert.True(t, result.EstimatedCost.Equal(decimalFromString(t, "500")), "40 * 12.50, got %s", result.EstimatedCost)

	// The planned receipt must now count as incoming supply.
	txs, err := f.transactions.ListSupplyByMaterial(context.Background(), "fabric")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.SupplyPlanned, txs[0].Status)
	assert.True(t, txs[0].InSupplyPipeline())
}

func TestCreatePurchaseRequisition_DefaultLeadTime(t *testing.T) {
	f := newPlannerFixture(t)
	f.materials.Put(entity.MaterialInventory{ID: "thread", Unit: "spool"})
	required := time.Now().AddDate(0, 0, 10)

	result, err := f.planner.CreatePurchaseRequisition(context.Background(), dto.CreateRequisitionRequest{
		MaterialID:   "thread",
		Quantity:     dec(10),
		RequiredDate: required,
	})
	require.NoError(t, err)
	// No lead time on record falls back to the configured default (7 days).
	assert.Equal(t, required.AddDate(0, 0, -7), result.OrderDate)
}

func TestCreatePurchaseRequisition_Validation(t *testing.T) {
	f := newPlannerFixture(t)
	f.materials.Put(entity.MaterialInventory{ID: "fabric"})

	_, err := f.planner.CreatePurchaseRequisition(context.Background(), dto.CreateRequisitionRequest{
		MaterialID: "fabric", Quantity: dec(0), RequiredDate: time.Now(),
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.planner.CreatePurchaseRequisition(context.Background(), dto.CreateRequisitionRequest{
		MaterialID: "fabric", Quantity: dec(10),
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.planner.CreatePurchaseRequisition(context.Background(), dto.CreateRequisitionRequest{
		MaterialID: "nope", Quantity: dec(10), RequiredDate: time.Now(),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
