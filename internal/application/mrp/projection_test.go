package mrp_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

func TestProjectStockLevels_RunningBalance(t *testing.T) {
	f := newPlannerFixture(t)
	today := time.Now()

	f.materials.Put(entity.MaterialInventory{
		ID: "fabric", Unit: "m", CurrentStock: dec(100),
	})
	// 20 m/day of demand for a week, one 80 m receipt landing on day 2.
	for i := 0; i < 7; i++ {
		orderID := fmt.Sprintf("ord-%d", i)
		f.orders.Put(entity.Order{ID: orderID, Status: entity.OrderOpen, DeliveryDate: today.AddDate(0, 0, i)})
		f.requirements.Put(entity.MaterialRequirement{OrderID: orderID, MaterialID: "fabric", RequiredQuantity: dec(20)})
	}
	f.transactions.Put(entity.MaterialTransaction{
		ID: "tx-1", MaterialID: "fabric", Type: entity.TransactionIn,
		Quantity: dec(80), Status: entity.SupplyOrdered, PlannedDate: today.AddDate(0, 0, 2),
	})

	days, err := f.planner.ProjectStockLevels(context.Background(), "fabric")
	require.NoError(t, err)
	require.Len(t, days, 30)

	wantEnding := []int64{80, 60, 120, 100, 80, 60, 40}
	for i, want := range wantEnding {
		assert.True(t, days[i].EndingStock.Equal(dec(want)),
			"day %d: want ending %d, got %s", i, want, days[i].EndingStock)
		assert.True(t, days[i].Shortfall.IsZero(), "day %d: no shortfall expected", i)
	}

	for i, d := range days {
		// endingStock = beginningStock + receipts - demands, every day.
		assert.True(t, d.EndingStock.Equal(d.BeginningStock.Add(d.Receipts).Sub(d.Demands)),
			"recurrence broken on day %d", i)
		if i > 0 {
			assert.True(t, d.BeginningStock.Equal(days[i-1].EndingStock),
				"balance not carried into day %d", i)
		}
	}
}

func TestProjectStockLevels_ShortfallCarriesForwardUnclamped(t *testing.T) {
	f := newPlannerFixture(t)
	today := time.Now()

	f.materials.Put(entity.MaterialInventory{ID: "ink", Unit: "l", CurrentStock: dec(10)})
	f.orders.Put(entity.Order{ID: "ord-1", Status: entity.OrderOpen, DeliveryDate: today.AddDate(0, 0, 1)})
	f.requirements.Put(entity.MaterialRequirement{OrderID: "ord-1", MaterialID: "ink", RequiredQuantity: dec(50)})
	f.transactions.Put(entity.MaterialTransaction{
		ID: "tx-1", MaterialID: "ink", Type: entity.TransactionIn,
		Quantity: dec(60), Status: entity.SupplyOrdered, PlannedDate: today.AddDate(0, 0, 3),
	})

	days, err := f.planner.ProjectStockLevels(context.Background(), "ink")
	require.NoError(t, err)

	assert.True(t, days[1].EndingStock.Equal(dec(-40)))
	assert.True(t, days[1].Shortfall.Equal(dec(40)))
	assert.Contains(t, days[1].Actions, "order 40 l immediately")

	// The negative balance feeds the next days; the receipt only partially
	// recovers it.
	assert.True(t, days[2].BeginningStock.Equal(dec(-40)))
	assert.True(t, days[3].EndingStock.Equal(dec(20)))
	assert.True(t, days[3].Shortfall.IsZero())
}

func TestProjectStockLevels_ClosedOrdersIgnored(t *testing.T) {
	f := newPlannerFixture(t)
	today := time.Now()

	f.materials.Put(entity.MaterialInventory{ID: "fabric", CurrentStock: dec(100)})
	f.orders.Put(entity.Order{ID: "ord-done", Status: entity.OrderCompleted, DeliveryDate: today.AddDate(0, 0, 1)})
	f.requirements.Put(entity.MaterialRequirement{OrderID: "ord-done", MaterialID: "fabric", RequiredQuantity: dec(500)})

	days, err := f.planner.ProjectStockLevels(context.Background(), "fabric")
	require.NoError(t, err)
	for _, d := range days {
		assert.True(t, d.Demands.IsZero())
		assert.True(t, d.EndingStock.Equal(dec(100)))
	}
}

func TestProjectStockLevels_UnknownMaterial(t *testing.T) {
	f := newPlannerFixture(t)
	_, err := f.planner.ProjectStockLevels(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectAllStockLevels(t *testing.T) {
	f := newPlannerFixture(t)
	f.materials.Put(entity.MaterialInventory{ID: "fabric", CurrentStock: dec(100)})
	f.materials.Put(entity.MaterialInventory{ID: "thread", CurrentStock: dec(50)})

	out, err := f.planner.ProjectAllStockLevels(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out["fabric"], 30)
	assert.Len(t, out["thread"], 30)
}

func TestProjectAllStockLevels_NoPartialResultOnCancel(t *testing.T) {
	f := newPlannerFixture(t)
	f.materials.Put(entity.MaterialInventory{ID: "fabric", CurrentStock: dec(100)})
	f.materials.Put(entity.MaterialInventory{ID: "thread", CurrentStock: dec(50)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := f.planner.ProjectAllStockLevels(ctx)
	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.Nil(t, out)
}
