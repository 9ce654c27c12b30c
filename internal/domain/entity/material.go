package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialInventory is the stock record for one raw material (fabric, thread,
// ink, trims). Quantities are in the material's own unit.
type MaterialInventory struct {
	ID           string
	Name         string
	Unit         string
	CurrentStock decimal.Decimal
	MinimumStock decimal.Decimal
	ReorderPoint decimal.Decimal
	Supplier     string
	UnitCost     decimal.Decimal
	LeadTimeDays int
	UpdatedAt    time.Time
}

// MaterialRequirement how much of a material one order consumes.
type MaterialRequirement struct {
	OrderID          string
	MaterialID       string
	RequiredQuantity decimal.Decimal
}

// TransactionType direction of a material movement.
type TransactionType string

const (
	TransactionIn  TransactionType = "IN"
	TransactionOut TransactionType = "OUT"
)

// SupplyStatus lifecycle of a planned receipt.
type SupplyStatus string

const (
	SupplyPlanned  SupplyStatus = "PLANNED"
	SupplyOrdered  SupplyStatus = "ORDERED"
	SupplyShipped  SupplyStatus = "SHIPPED"
	SupplyReceived SupplyStatus = "RECEIVED"
)

// MaterialTransaction is a stock movement, actual or planned. A purchase
// requisition shows up here as an IN transaction with status PLANNED and a
// PlannedDate; it counts as incoming supply until RECEIVED, at which point
// it is stock.
type MaterialTransaction struct {
	ID            string
	MaterialID    string
	Type          TransactionType
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Note          string
	Status        SupplyStatus
	PlannedDate   time.Time
	CreatedAt     time.Time
}

// InSupplyPipeline reports whether the transaction still counts as incoming
// supply for netting purposes.
func (t *MaterialTransaction) InSupplyPipeline() bool {
	return t.Type == TransactionIn && t.Status != SupplyReceived
}

// MaterialDemand is a derived need: quantity of one material required by one
// order at a date. Never persisted.
type MaterialDemand struct {
	MaterialID       string
	OrderID          string
	RequiredQuantity decimal.Decimal
	RequiredDate     time.Time
	Unit             string
	Priority         int
}
