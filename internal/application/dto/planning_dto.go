package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recommended actions for a netted material position.
const (
	ActionOrderNow  = "ORDER_NOW"
	ActionOrderSoon = "ORDER_SOON"
	ActionAdequate  = "ADEQUATE"
	ActionExcess    = "EXCESS"
)

// MRPResult net position for one material across the selected demand set.
// A report row, never persisted.
type MRPResult struct {
	MaterialID        string          `json:"material_id"`
	MaterialName      string          `json:"material_name"`
	Unit              string          `json:"unit"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	TotalDemand       decimal.Decimal `json:"total_demand"`
	PlannedSupply     decimal.Decimal `json:"planned_supply"`
	ProjectedStock    decimal.Decimal `json:"projected_stock"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	RecommendedAction string          `json:"recommended_action"`
	EarliestRequired  time.Time       `json:"earliest_required"`
	DemandOrders      []string        `json:"demand_orders"`
}

// StockProjection one day of the running-balance projection for a material.
type StockProjection struct {
	Date           time.Time       `json:"date"`
	BeginningStock decimal.Decimal `json:"beginning_stock"`
	Receipts       decimal.Decimal `json:"receipts"`
	Demands        decimal.Decimal `json:"demands"`
	EndingStock    decimal.Decimal `json:"ending_stock"`
	Shortfall      decimal.Decimal `json:"shortfall"`
	Actions        []string        `json:"actions,omitempty"`
}

// CreateRequisitionRequest input for a purchase requisition.
type CreateRequisitionRequest struct {
	MaterialID    string          `json:"material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	RequiredDate  time.Time       `json:"required_date"`
	Justification string          `json:"justification"`
}

// RequisitionResult outcome of a purchase requisition: the planned receipt
// and the latest date the order must be placed to make the required date.
type RequisitionResult struct {
	RequisitionID string          `json:"requisition_id"`
	MaterialID    string          `json:"material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	OrderDate     time.Time       `json:"order_date"`
	RequiredDate  time.Time       `json:"required_date"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// PurchaseLine one material on a consolidated supplier order.
type PurchaseLine struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Cost         decimal.Decimal `json:"cost"`
}

// ConsolidatedOrder all shortfall materials of one supplier merged into a
// single purchase order.
type ConsolidatedOrder struct {
	Supplier  string          `json:"supplier"`
	OrderDate time.Time       `json:"order_date"`
	Lines     []PurchaseLine  `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// MaterialPlanOptimization consolidated purchase proposal with the savings
// over ordering each material separately.
type MaterialPlanOptimization struct {
	ConsolidatedOrders []ConsolidatedOrder `json:"consolidated_orders"`
	TotalCost          decimal.Decimal     `json:"total_cost"`
	Savings            decimal.Decimal     `json:"savings"`
}
