package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo OrderRepository over PostgreSQL (usable with pool or tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository builds the adapter. Pass a pool or a tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// GetByID loads an order with its line items. Returns (nil, nil) when the
// order does not exist.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := withRetry(ctx, func() error {
		query := `
			SELECT id, customer_name, delivery_date, status, created_at
			FROM orders WHERE id = $1`
		err := r.q.QueryRow(ctx, query, id).Scan(
			&o.ID, &o.CustomerName, &o.DeliveryDate, &o.Status, &o.CreatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			o.ID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o.ID == "" {
		return nil, nil
	}

	err = withRetry(ctx, func() error {
		query := `
			SELECT order_id, product_id, size_code, quantity
			FROM order_line_items WHERE order_id = $1`
		rows, err := r.q.Query(ctx, query, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		o.LineItems = o.LineItems[:0]
		for rows.Next() {
			var li entity.OrderLineItem
			if err := rows.Scan(&li.OrderID, &li.ProductID, &li.SizeCode, &li.Quantity); err != nil {
				return err
			}
			o.LineItems = append(o.LineItems, li)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get order line items: %w", err)
	}
	return &o, nil
}

// ListOpen lists orders that still generate demand. Line items are not
// loaded; the planner only needs ids and delivery dates.
func (r *OrderRepo) ListOpen(ctx context.Context) ([]*entity.Order, error) {
	var out []*entity.Order
	err := withRetry(ctx, func() error {
		query := `
			SELECT id, customer_name, delivery_date, status, created_at
			FROM orders WHERE status IN ('OPEN', 'IN_PRODUCTION')
			ORDER BY delivery_date, id`
		rows, err := r.q.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var o entity.Order
			if err := rows.Scan(&o.ID, &o.CustomerName, &o.DeliveryDate, &o.Status, &o.CreatedAt); err != nil {
				return err
			}
			out = append(out, &o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	return out, nil
}
