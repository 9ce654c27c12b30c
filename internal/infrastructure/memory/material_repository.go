package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var (
	_ repository.MaterialInventoryRepository   = (*MaterialInventoryRepo)(nil)
	_ repository.MaterialRequirementRepository = (*MaterialRequirementRepo)(nil)
	_ repository.MaterialTransactionRepository = (*MaterialTransactionRepo)(nil)
)

// MaterialInventoryRepo in-memory MaterialInventoryRepository.
type MaterialInventoryRepo struct {
	mu        sync.RWMutex
	materials map[string]entity.MaterialInventory
}

// NewMaterialInventoryRepository builds an empty repo.
func NewMaterialInventoryRepository() *MaterialInventoryRepo {
	return &MaterialInventoryRepo{materials: make(map[string]entity.MaterialInventory)}
}

// Put seeds or replaces a material.
func (r *MaterialInventoryRepo) Put(m entity.MaterialInventory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials[m.ID] = m
}

func (r *MaterialInventoryRepo) GetByID(_ context.Context, id string) (*entity.MaterialInventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MaterialInventoryRepo) List(_ context.Context) ([]*entity.MaterialInventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.MaterialInventory, 0, len(r.materials))
	for _, m := range r.materials {
		c := m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MaterialRequirementRepo in-memory MaterialRequirementRepository.
type MaterialRequirementRepo struct {
	mu   sync.RWMutex
	rows []entity.MaterialRequirement
}

// NewMaterialRequirementRepository builds an empty repo.
func NewMaterialRequirementRepository() *MaterialRequirementRepo {
	return &MaterialRequirementRepo{}
}

// Put appends a requirement row.
func (r *MaterialRequirementRepo) Put(req entity.MaterialRequirement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, req)
}

func (r *MaterialRequirementRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.MaterialRequirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.MaterialRequirement
	for i := range r.rows {
		if r.rows[i].OrderID == orderID {
			c := r.rows[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MaterialRequirementRepo) ListByMaterial(_ context.Context, materialID string) ([]*entity.MaterialRequirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.MaterialRequirement
	for i := range r.rows {
		if r.rows[i].MaterialID == materialID {
			c := r.rows[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// MaterialTransactionRepo in-memory MaterialTransactionRepository.
type MaterialTransactionRepo struct {
	mu   sync.RWMutex
	rows []entity.MaterialTransaction
}

// NewMaterialTransactionRepository builds an empty repo.
func NewMaterialTransactionRepository() *MaterialTransactionRepo {
	return &MaterialTransactionRepo{}
}

// Put appends a transaction.
func (r *MaterialTransactionRepo) Put(tx entity.MaterialTransaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, tx)
}

func (r *MaterialTransactionRepo) Create(_ context.Context, tx *entity.MaterialTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *tx)
	return nil
}

func (r *MaterialTransactionRepo) ListSupplyByMaterial(_ context.Context, materialID string) ([]*entity.MaterialTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.MaterialTransaction
	for i := range r.rows {
		if r.rows[i].MaterialID == materialID && r.rows[i].Type == entity.TransactionIn {
			c := r.rows[i]
			out = append(out, &c)
		}
	}
	return out, nil
}
