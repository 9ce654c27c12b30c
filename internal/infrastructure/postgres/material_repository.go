package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var (
	_ repository.MaterialInventoryRepository   = (*MaterialInventoryRepo)(nil)
	_ repository.MaterialRequirementRepository = (*MaterialRequirementRepo)(nil)
	_ repository.MaterialTransactionRepository = (*MaterialTransactionRepo)(nil)
)

// MaterialInventoryRepo MaterialInventoryRepository over PostgreSQL.
type MaterialInventoryRepo struct {
	q Querier
}

// NewMaterialInventoryRepository builds the adapter. Pass a pool or tx.
func NewMaterialInventoryRepository(q Querier) *MaterialInventoryRepo {
	return &MaterialInventoryRepo{q: q}
}

const materialColumns = `id, name, unit, current_stock, minimum_stock, reorder_point, supplier, unit_cost, lead_time_days, updated_at`

func scanMaterial(row pgx.Row, m *entity.MaterialInventory) error {
	return row.Scan(
		&m.ID, &m.Name, &m.Unit, &m.CurrentStock, &m.MinimumStock,
		&m.ReorderPoint, &m.Supplier, &m.UnitCost, &m.LeadTimeDays, &m.UpdatedAt,
	)
}

func (r *MaterialInventoryRepo) GetByID(ctx context.Context, id string) (*entity.MaterialInventory, error) {
	var m entity.MaterialInventory
	err := withRetry(ctx, func() error {
		query := `SELECT ` + materialColumns + ` FROM material_inventory WHERE id = $1`
		err := scanMaterial(r.q.QueryRow(ctx, query, id), &m)
		if errors.Is(err, pgx.ErrNoRows) {
			m.ID = ""
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	if m.ID == "" {
		return nil, nil
	}
	return &m, nil
}

func (r *MaterialInventoryRepo) List(ctx context.Context) ([]*entity.MaterialInventory, error) {
	var out []*entity.MaterialInventory
	err := withRetry(ctx, func() error {
		query := `SELECT ` + materialColumns + ` FROM material_inventory ORDER BY id`
		rows, err := r.q.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var m entity.MaterialInventory
			if err := scanMaterial(rows, &m); err != nil {
				return err
			}
			out = append(out, &m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return out, nil
}

// MaterialRequirementRepo MaterialRequirementRepository over PostgreSQL.
type MaterialRequirementRepo struct {
	q Querier
}

// NewMaterialRequirementRepository builds the adapter. Pass a pool or tx.
func NewMaterialRequirementRepository(q Querier) *MaterialRequirementRepo {
	return &MaterialRequirementRepo{q: q}
}

func (r *MaterialRequirementRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.MaterialRequirement, error) {
	return r.list(ctx, `WHERE order_id = $1`, orderID)
}

func (r *MaterialRequirementRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.MaterialRequirement, error) {
	return r.list(ctx, `WHERE material_inventory_id = $1`, materialID)
}

func (r *MaterialRequirementRepo) list(ctx context.Context, where string, arg any) ([]*entity.MaterialRequirement, error) {
	var out []*entity.MaterialRequirement
	err := withRetry(ctx, func() error {
		query := `
			SELECT order_id, material_inventory_id, required_quantity
			FROM material_requirements ` + where
		rows, err := r.q.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var req entity.MaterialRequirement
			if err := rows.Scan(&req.OrderID, &req.MaterialID, &req.RequiredQuantity); err != nil {
				return err
			}
			out = append(out, &req)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list material requirements: %w", err)
	}
	return out, nil
}

// MaterialTransactionRepo MaterialTransactionRepository over PostgreSQL.
type MaterialTransactionRepo struct {
	q Querier
}

// NewMaterialTransactionRepository builds the adapter. Pass a pool or tx.
func NewMaterialTransactionRepository(q Querier) *MaterialTransactionRepo {
	return &MaterialTransactionRepo{q: q}
}

func (r *MaterialTransactionRepo) Create(ctx context.Context, tx *entity.MaterialTransaction) error {
	err := withRetry(ctx, func() error {
		query := `
			INSERT INTO material_transactions
				(id, material_inventory_id, type, quantity, unit_cost, reference_type, reference_id, note, status, planned_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		_, err := r.q.Exec(ctx, query,
			tx.ID, tx.MaterialID, tx.Type, tx.Quantity, tx.UnitCost,
			tx.ReferenceType, tx.ReferenceID, tx.Note, tx.Status, tx.PlannedDate, tx.CreatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s exists: %w", tx.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create material transaction: %w", err)
	}
	return nil
}

func (r *MaterialTransactionRepo) ListSupplyByMaterial(ctx context.Context, materialID string) ([]*entity.MaterialTransaction, error) {
	var out []*entity.MaterialTransaction
	err := withRetry(ctx, func() error {
		query := `
			SELECT id, material_inventory_id, type, quantity, unit_cost, reference_type, reference_id, note, status, planned_date, created_at
			FROM material_transactions
			WHERE material_inventory_id = $1 AND type = 'IN'
			ORDER BY planned_date, id`
		rows, err := r.q.Query(ctx, query, materialID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var t entity.MaterialTransaction
			if err := rows.Scan(
				&t.ID, &t.MaterialID, &t.Type, &t.Quantity, &t.UnitCost,
				&t.ReferenceType, &t.ReferenceID, &t.Note, &t.Status, &t.PlannedDate, &t.CreatedAt,
			); err != nil {
				return err
			}
			out = append(out, &t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list supply transactions: %w", err)
	}
	return out, nil
}
