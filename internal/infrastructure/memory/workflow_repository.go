package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var (
	_ repository.WorkflowRepository = (*WorkflowRepo)(nil)
	_ repository.AlertRepository    = (*AlertRepo)(nil)
)

// WorkflowRepo in-memory WorkflowRepository.
type WorkflowRepo struct {
	mu        sync.RWMutex
	instances map[string]entity.WorkflowInstance
	steps     map[string]entity.WorkflowStep
}

// NewWorkflowRepository builds an empty repo.
func NewWorkflowRepository() *WorkflowRepo {
	return &WorkflowRepo{
		instances: make(map[string]entity.WorkflowInstance),
		steps:     make(map[string]entity.WorkflowStep),
	}
}

func (r *WorkflowRepo) Create(_ context.Context, w *entity.WorkflowInstance, steps []*entity.WorkflowStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[w.ID] = *w
	for _, s := range steps {
		r.steps[s.ID] = *s
	}
	return nil
}

func (r *WorkflowRepo) GetInstance(_ context.Context, id string) (*entity.WorkflowInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.instances[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WorkflowRepo) GetInstanceByOrder(_ context.Context, orderID string) (*entity.WorkflowInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.instances {
		if w.OrderID == orderID {
			c := w
			return &c, nil
		}
	}
	return nil, nil
}

func (r *WorkflowRepo) UpdateInstance(_ context.Context, w *entity.WorkflowInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[w.ID] = *w
	return nil
}

func (r *WorkflowRepo) GetStep(_ context.Context, stepID string) (*entity.WorkflowStep, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.steps[stepID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *WorkflowRepo) ListSteps(_ context.Context, workflowID string) ([]*entity.WorkflowStep, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.WorkflowStep
	for _, s := range r.steps {
		if s.WorkflowID == workflowID {
			c := s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *WorkflowRepo) UpdateStep(_ context.Context, s *entity.WorkflowStep) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[s.ID] = *s
	return nil
}

func (r *WorkflowRepo) ListActiveInstances(_ context.Context) ([]*entity.WorkflowInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.WorkflowInstance
	for _, w := range r.instances {
		if !w.Status.Terminal() {
			c := w
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AlertRepo in-memory AlertRepository.
type AlertRepo struct {
	mu     sync.RWMutex
	alerts map[string]entity.ProductionAlert
}

// NewAlertRepository builds an empty repo.
func NewAlertRepository() *AlertRepo {
	return &AlertRepo{alerts: make(map[string]entity.ProductionAlert)}
}

func (r *AlertRepo) Create(_ context.Context, a *entity.ProductionAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[a.ID] = *a
	return nil
}

func (r *AlertRepo) ListActive(_ context.Context, now time.Time) ([]*entity.ProductionAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ProductionAlert
	for _, a := range r.alerts {
		if a.Active(now) {
			c := a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *AlertRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.IsRead = true
	r.alerts[id] = a
	return nil
}
