package mrp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
	"github.com/sorbetes/garment-ops/pkg/config"
	"github.com/sorbetes/garment-ops/pkg/logger"
)

// Planner nets material demand against stock and incoming supply. Every call
// works on a snapshot fetched at call start; nothing is cached between runs,
// so re-running with unchanged inputs yields identical reports.
type Planner struct {
	orders       repository.OrderRepository
	materials    repository.MaterialInventoryRepository
	requirements repository.MaterialRequirementRepository
	transactions repository.MaterialTransactionRepository
	cfg          config.PlanningConfig
	log          *logger.Logger
}

// NewPlanner builds the planner.
func NewPlanner(
	orders repository.OrderRepository,
	materials repository.MaterialInventoryRepository,
	requirements repository.MaterialRequirementRepository,
	transactions repository.MaterialTransactionRepository,
	cfg config.PlanningConfig,
	log *logger.Logger,
) *Planner {
	return &Planner{
		orders:       orders,
		materials:    materials,
		requirements: requirements,
		transactions: transactions,
		cfg:          cfg,
		log:          log,
	}
}

// GenerateMRPPlan aggregates demand across all open orders (or a single one
// when orderID is non-empty), nets it against current stock plus the summed
// supply pipeline, and classifies each material. The report is fully built
// or not at all: a caller deadline aborts with ErrTimeout.
func (p *Planner) GenerateMRPPlan(ctx context.Context, orderID string) ([]dto.MRPResult, error) {
	demands, err := p.collectDemands(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Group demand per material, keeping the earliest required date and the
	// contributing orders for traceability.
	type agg struct {
		total    decimal.Decimal
		earliest time.Time
		orders   []string
	}
	byMaterial := make(map[string]*agg)
	for _, d := range demands {
		a, ok := byMaterial[d.MaterialID]
		if !ok {
			a = &agg{}
			byMaterial[d.MaterialID] = a
		}
		a.total = a.total.Add(d.RequiredQuantity)
		if a.earliest.IsZero() || d.RequiredDate.Before(a.earliest) {
			a.earliest = d.RequiredDate
		}
		a.orders = append(a.orders, d.OrderID)
	}

	results := make([]dto.MRPResult, 0, len(byMaterial))
	for materialID, a := range byMaterial {
		if err := checkDeadline(ctx); err != nil {
			return nil, fmt.Errorf("mrp plan: %w", err)
		}
		material, err := p.materials.GetByID(ctx, materialID)
		if err != nil {
			return nil, fmt.Errorf("load material %s: %w", materialID, err)
		}
		// A demand with no inventory record nets against zero stock.
		if material == nil {
			material = &entity.MaterialInventory{ID: materialID}
		}

		supply, err := p.plannedSupply(ctx, materialID)
		if err != nil {
			return nil, err
		}

		r := dto.MRPResult{
			MaterialID:       materialID,
			MaterialName:     material.Name,
			Unit:             material.Unit,
			CurrentStock:     material.CurrentStock,
			TotalDemand:      a.total,
			PlannedSupply:    supply,
			EarliestRequired: a.earliest,
			DemandOrders:     dedupeSorted(a.orders),
		}
		r.ProjectedStock = r.CurrentStock.Add(r.PlannedSupply).Sub(r.TotalDemand)
		r.Shortfall = decimal.Max(decimal.Zero, r.TotalDemand.Sub(r.CurrentStock.Add(r.PlannedSupply)))
		r.RecommendedAction = classify(r, material)
		results = append(results, r)
	}

	// Shortfalls first, largest shortfall first; material id breaks ties so
	// the report is stable across runs.
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		aShort, bShort := a.Shortfall.IsPositive(), b.Shortfall.IsPositive()
		if aShort != bShort {
			return aShort
		}
		if !a.Shortfall.Equal(b.Shortfall) {
			return a.Shortfall.GreaterThan(b.Shortfall)
		}
		return a.MaterialID < b.MaterialID
	})

	p.log.Debug().Int("materials", len(results)).Str("order_id", orderID).Msg("mrp plan generated")
	return results, nil
}

// collectDemands derives MaterialDemand rows from open orders' requirements.
// The required date is the order's delivery date.
func (p *Planner) collectDemands(ctx context.Context, orderID string) ([]entity.MaterialDemand, error) {
	var orders []*entity.Order
	if orderID != "" {
		o, err := p.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("load order %s: %w", orderID, err)
		}
		if o == nil {
			return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		orders = []*entity.Order{o}
	} else {
		var err error
		orders, err = p.orders.ListOpen(ctx)
		if err != nil {
			return nil, fmt.Errorf("list open orders: %w", err)
		}
	}

	var demands []entity.MaterialDemand
	for _, o := range orders {
		if err := checkDeadline(ctx); err != nil {
			return nil, fmt.Errorf("collect demands: %w", err)
		}
		reqs, err := p.requirements.ListByOrder(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("requirements for order %s: %w", o.ID, err)
		}
		for _, r := range reqs {
			demands = append(demands, entity.MaterialDemand{
				MaterialID:       r.MaterialID,
				OrderID:          o.ID,
				RequiredQuantity: r.RequiredQuantity,
				RequiredDate:     o.DeliveryDate,
			})
		}
	}
	return demands, nil
}

// plannedSupply sums every transaction still in the supply pipeline for the
// material. The whole pipeline counts, not just the latest receipt.
func (p *Planner) plannedSupply(ctx context.Context, materialID string) (decimal.Decimal, error) {
	txs, err := p.transactions.ListSupplyByMaterial(ctx, materialID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("supply for material %s: %w", materialID, err)
	}
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.InSupplyPipeline() {
			sum = sum.Add(tx.Quantity)
		}
	}
	return sum, nil
}

func classify(r dto.MRPResult, material *entity.MaterialInventory) string {
	switch {
	case r.Shortfall.IsPositive():
		return dto.ActionOrderNow
	case r.ProjectedStock.LessThan(material.MinimumStock):
		return dto.ActionOrderSoon
	case r.ProjectedStock.GreaterThan(material.CurrentStock.Mul(decimal.NewFromInt(2))):
		return dto.ActionExcess
	default:
		return dto.ActionAdequate
	}
}

func checkDeadline(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return domain.ErrTimeout
	default:
		return nil
	}
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
