package mrp

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
)

// ProjectStockLevels walks the planning horizon day by day from today,
// applying endingStock = beginningStock + receipts - demands. The balance is
// carried forward unclamped so the recurrence holds even through a shortfall.
func (p *Planner) ProjectStockLevels(ctx context.Context, materialID string) ([]dto.StockProjection, error) {
	material, err := p.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("load material %s: %w", materialID, err)
	}
	if material == nil {
		return nil, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}

	receipts, err := p.receiptsByDay(ctx, materialID)
	if err != nil {
		return nil, err
	}
	demands, err := p.demandsByDay(ctx, materialID)
	if err != nil {
		return nil, err
	}

	today := dayOf(time.Now())
	balance := material.CurrentStock
	projections := make([]dto.StockProjection, 0, p.cfg.HorizonDays)

	for d := 0; d < p.cfg.HorizonDays; d++ {
		if err := checkDeadline(ctx); err != nil {
			return nil, fmt.Errorf("stock projection: %w", err)
		}
		date := today.AddDate(0, 0, d)
		key := dayKey(date)

		proj := dto.StockProjection{
			Date:           date,
			BeginningStock: balance,
			Receipts:       receipts[key],
			Demands:        demands[key],
		}
		proj.EndingStock = proj.BeginningStock.Add(proj.Receipts).Sub(proj.Demands)
		proj.Shortfall = decimal.Max(decimal.Zero, proj.EndingStock.Neg())

		if proj.Shortfall.IsPositive() {
			proj.Actions = append(proj.Actions,
				fmt.Sprintf("order %s %s immediately", proj.Shortfall.String(), material.Unit))
		}
		if proj.EndingStock.LessThan(material.MinimumStock) {
			proj.Actions = append(proj.Actions, "ending stock below minimum stock")
		}
		if proj.EndingStock.LessThan(material.ReorderPoint) {
			proj.Actions = append(proj.Actions, "ending stock below reorder point")
		}

		projections = append(projections, proj)
		balance = proj.EndingStock
	}
	return projections, nil
}

// ProjectAllStockLevels fans the projection out over every material and
// joins the results. One failure (including a deadline) fails the whole
// report; no partial map is returned.
func (p *Planner) ProjectAllStockLevels(ctx context.Context) (map[string][]dto.StockProjection, error) {
	materials, err := p.materials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	type keyed struct {
		id   string
		days []dto.StockProjection
	}
	results := make(chan keyed, len(materials))
	for _, m := range materials {
		m := m
		g.Go(func() error {
			days, err := p.ProjectStockLevels(gctx, m.ID)
			if err != nil {
				return err
			}
			results <- keyed{id: m.ID, days: days}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	out := make(map[string][]dto.StockProjection, len(materials))
	for r := range results {
		out[r.id] = r.days
	}
	return out, nil
}

// receiptsByDay buckets the supply pipeline by planned date.
func (p *Planner) receiptsByDay(ctx context.Context, materialID string) (map[string]decimal.Decimal, error) {
	txs, err := p.transactions.ListSupplyByMaterial(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("supply for material %s: %w", materialID, err)
	}
	out := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.InSupplyPipeline() || tx.PlannedDate.IsZero() {
			continue
		}
		key := dayKey(tx.PlannedDate)
		out[key] = out[key].Add(tx.Quantity)
	}
	return out, nil
}

// demandsByDay buckets open-order demand by the orders' delivery dates.
func (p *Planner) demandsByDay(ctx context.Context, materialID string) (map[string]decimal.Decimal, error) {
	reqs, err := p.requirements.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("requirements for material %s: %w", materialID, err)
	}
	out := make(map[string]decimal.Decimal)
	orderDates := make(map[string]time.Time)
	for _, r := range reqs {
		date, ok := orderDates[r.OrderID]
		if !ok {
			o, err := p.orders.GetByID(ctx, r.OrderID)
			if err != nil {
				return nil, fmt.Errorf("load order %s: %w", r.OrderID, err)
			}
			if o == nil || !o.IsOpen() {
				orderDates[r.OrderID] = time.Time{}
				continue
			}
			date = o.DeliveryDate
			orderDates[r.OrderID] = date
		}
		if date.IsZero() {
			continue
		}
		key := dayKey(date)
		out[key] = out[key].Add(r.RequiredQuantity)
	}
	return out, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
