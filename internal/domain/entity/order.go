package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus lifecycle of a customer order.
type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderInProd    OrderStatus = "IN_PRODUCTION"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a customer order for a garment run.
type Order struct {
	ID           string
	CustomerName string
	DeliveryDate time.Time
	Status       OrderStatus
	LineItems    []OrderLineItem
	CreatedAt    time.Time
}

// OrderLineItem one garment/size/quantity row of an order.
type OrderLineItem struct {
	OrderID   string
	ProductID string
	SizeCode  string
	Quantity  decimal.Decimal
}

// IsOpen reports whether the order still generates material demand.
func (o *Order) IsOpen() bool {
	return o.Status == OrderOpen || o.Status == OrderInProd
}
