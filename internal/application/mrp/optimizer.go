package mrp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/application/dto"
)

// OptimizeMaterialPlan consolidates shortfall materials into one purchase
// order per supplier. Savings combine the flat per-order saving for every
// order avoided by consolidation with a bulk discount on supplier totals
// above the configured threshold. Supplier and line ordering are stable so
// the same input always yields the same proposal.
func (p *Planner) OptimizeMaterialPlan(ctx context.Context, results []dto.MRPResult) (*dto.MaterialPlanOptimization, error) {
	bySupplier := make(map[string][]dto.PurchaseLine)
	orderDates := make(map[string]time.Time)

	for _, r := range results {
		if !r.Shortfall.IsPositive() {
			continue
		}
		material, err := p.materials.GetByID(ctx, r.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("load material %s: %w", r.MaterialID, err)
		}
		supplier := "UNASSIGNED"
		unitCost := decimal.Zero
		leadDays := p.cfg.DefaultLeadTimeDays
		if material != nil {
			if material.Supplier != "" {
				supplier = material.Supplier
			}
			unitCost = material.UnitCost
			if material.LeadTimeDays > 0 {
				leadDays = material.LeadTimeDays
			}
		}

		line := dto.PurchaseLine{
			MaterialID:   r.MaterialID,
			MaterialName: r.MaterialName,
			Quantity:     r.Shortfall,
			UnitCost:     unitCost,
			Cost:         r.Shortfall.Mul(unitCost),
		}
		bySupplier[supplier] = append(bySupplier[supplier], line)

		// The supplier order must be placed early enough for its most
		// urgent line.
		if !r.EarliestRequired.IsZero() {
			orderBy := r.EarliestRequired.AddDate(0, 0, -leadDays)
			if cur, ok := orderDates[supplier]; !ok || orderBy.Before(cur) {
				orderDates[supplier] = orderBy
			}
		}
	}

	suppliers := make([]string, 0, len(bySupplier))
	for s := range bySupplier {
		suppliers = append(suppliers, s)
	}
	sort.Strings(suppliers)

	discountRate := decimal.NewFromFloat(p.cfg.BulkDiscountRate)
	discountMin := decimal.NewFromFloat(p.cfg.BulkDiscountMin)
	perOrderSaving := decimal.NewFromFloat(p.cfg.ConsolidationSaving)

	out := &dto.MaterialPlanOptimization{}
	for _, supplier := range suppliers {
		lines := bySupplier[supplier]
		sort.Slice(lines, func(i, j int) bool { return lines[i].MaterialID < lines[j].MaterialID })

		subtotal := decimal.Zero
		for _, l := range lines {
			subtotal = subtotal.Add(l.Cost)
		}
		discount := decimal.Zero
		if subtotal.GreaterThan(discountMin) {
			discount = subtotal.Mul(discountRate).Round(2)
		}

		order := dto.ConsolidatedOrder{
			Supplier:  supplier,
			OrderDate: orderDates[supplier],
			Lines:     lines,
			Subtotal:  subtotal,
			Discount:  discount,
			Total:     subtotal.Sub(discount),
		}
		out.ConsolidatedOrders = append(out.ConsolidatedOrders, order)
		out.TotalCost = out.TotalCost.Add(order.Total)

		// Each line beyond the first rides an order that would otherwise
		// have been placed separately.
		ordersAvoided := int64(len(lines) - 1)
		if ordersAvoided > 0 {
			out.Savings = out.Savings.Add(perOrderSaving.Mul(decimal.NewFromInt(ordersAvoided)))
		}
		out.Savings = out.Savings.Add(discount)
	}
	return out, nil
}
