package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var (
	_ repository.ProductionLineRepository     = (*ProductionLineRepo)(nil)
	_ repository.WorkStationRepository        = (*WorkStationRepo)(nil)
	_ repository.ProductionScheduleRepository = (*ProductionScheduleRepo)(nil)
)

// ProductionLineRepo in-memory ProductionLineRepository.
type ProductionLineRepo struct {
	mu    sync.RWMutex
	lines map[string]entity.ProductionLine
}

// NewProductionLineRepository builds an empty repo.
func NewProductionLineRepository() *ProductionLineRepo {
	return &ProductionLineRepo{lines: make(map[string]entity.ProductionLine)}
}

// Put seeds or replaces a line.
func (r *ProductionLineRepo) Put(l entity.ProductionLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[l.ID] = l
}

func (r *ProductionLineRepo) GetByID(_ context.Context, id string) (*entity.ProductionLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lines[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// WorkStationRepo in-memory WorkStationRepository.
type WorkStationRepo struct {
	mu       sync.RWMutex
	stations map[string]entity.WorkStation
}

// NewWorkStationRepository builds an empty repo.
func NewWorkStationRepository() *WorkStationRepo {
	return &WorkStationRepo{stations: make(map[string]entity.WorkStation)}
}

// Put seeds or replaces a station.
func (r *WorkStationRepo) Put(s entity.WorkStation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stations[s.ID] = s
}

func (r *WorkStationRepo) ListByLine(_ context.Context, lineID string) ([]*entity.WorkStation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.WorkStation
	for _, s := range r.stations {
		if s.LineID == lineID {
			c := s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ProductionScheduleRepo in-memory ProductionScheduleRepository.
type ProductionScheduleRepo struct {
	mu        sync.RWMutex
	schedules map[string]entity.ProductionSchedule
}

// NewProductionScheduleRepository builds an empty repo.
func NewProductionScheduleRepository() *ProductionScheduleRepo {
	return &ProductionScheduleRepo{schedules: make(map[string]entity.ProductionSchedule)}
}

// Put seeds or replaces a schedule.
func (r *ProductionScheduleRepo) Put(s entity.ProductionSchedule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.ID] = s
}

func (r *ProductionScheduleRepo) GetByID(_ context.Context, id string) (*entity.ProductionSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *ProductionScheduleRepo) List(_ context.Context, f repository.ScheduleFilter) ([]*entity.ProductionSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ProductionSchedule
	for _, s := range r.schedules {
		if !f.Date.IsZero() && !sameDay(s.PlannedStart, f.Date) {
			continue
		}
		if f.LineID != "" && s.LineID != f.LineID {
			continue
		}
		if f.WorkerID != "" && s.WorkerID != f.WorkerID {
			continue
		}
		c := s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductionScheduleRepo) Update(_ context.Context, s *entity.ProductionSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules[s.ID] = *s
	return nil
}
