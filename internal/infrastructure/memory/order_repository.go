package memory

import (
	"context"
	"sync"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo in-memory OrderRepository. Safe for concurrent use.
type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]entity.Order
}

// NewOrderRepository builds an empty repo.
func NewOrderRepository() *OrderRepo {
	return &OrderRepo{orders: make(map[string]entity.Order)}
}

// Put seeds or replaces an order.
func (r *OrderRepo) Put(o entity.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *OrderRepo) ListOpen(_ context.Context) ([]*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Order
	for _, o := range r.orders {
		if o.IsOpen() {
			c := o
			out = append(out, &c)
		}
	}
	return out, nil
}
