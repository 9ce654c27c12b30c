package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
	"github.com/sorbetes/garment-ops/internal/domain/repository"
)

var (
	_ repository.EmployeeRepository         = (*EmployeeRepo)(nil)
	_ repository.WorkerAllocationRepository = (*WorkerAllocationRepo)(nil)
	_ repository.WorkerAssignmentRepository = (*WorkerAssignmentRepo)(nil)
)

// EmployeeRepo in-memory EmployeeRepository.
type EmployeeRepo struct {
	mu        sync.RWMutex
	employees map[string]entity.Employee
}

// NewEmployeeRepository builds an empty repo.
func NewEmployeeRepository() *EmployeeRepo {
	return &EmployeeRepo{employees: make(map[string]entity.Employee)}
}

// Put seeds or replaces an employee.
func (r *EmployeeRepo) Put(e entity.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[e.ID] = e
}

func (r *EmployeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *EmployeeRepo) ListActive(_ context.Context) ([]*entity.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Employee
	for _, e := range r.employees {
		if e.IsActive {
			c := e
			out = append(out, &c)
		}
	}
	return out, nil
}

func allocKey(workerID string, date time.Time, shift entity.Shift) string {
	return workerID + "|" + date.Format("2006-01-02") + "|" + string(shift)
}

// WorkerAllocationRepo in-memory WorkerAllocationRepository keyed by
// worker+day+shift.
type WorkerAllocationRepo struct {
	mu    sync.RWMutex
	allox map[string]entity.WorkerAllocation
}

// NewWorkerAllocationRepository builds an empty repo.
func NewWorkerAllocationRepository() *WorkerAllocationRepo {
	return &WorkerAllocationRepo{allox: make(map[string]entity.WorkerAllocation)}
}

// Put seeds or replaces a roster entry.
func (r *WorkerAllocationRepo) Put(a entity.WorkerAllocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allox[allocKey(a.WorkerID, a.Date, a.Shift)] = a
}

func (r *WorkerAllocationRepo) Get(_ context.Context, workerID string, date time.Time, shift entity.Shift) (*entity.WorkerAllocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.allox[allocKey(workerID, date, shift)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *WorkerAllocationRepo) ListByDateShift(_ context.Context, date time.Time, shift entity.Shift) ([]*entity.WorkerAllocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	day := date.Format("2006-01-02")
	var out []*entity.WorkerAllocation
	for _, a := range r.allox {
		if a.Date.Format("2006-01-02") == day && a.Shift == shift {
			c := a
			out = append(out, &c)
		}
	}
	return out, nil
}

// WorkerAssignmentRepo in-memory WorkerAssignmentRepository. Commit holds
// the write lock across the availability re-check and the append, which
// serializes commits exactly like the SQL adapter's row lock does.
type WorkerAssignmentRepo struct {
	mu   sync.RWMutex
	rows []entity.WorkerAssignment

	// FailNextCommits makes the next n commits lose with ErrConflict, for
	// exercising the retry path in tests.
	FailNextCommits int
}

// NewWorkerAssignmentRepository builds an empty repo.
func NewWorkerAssignmentRepository() *WorkerAssignmentRepo {
	return &WorkerAssignmentRepo{}
}

func (r *WorkerAssignmentRepo) ListByWorkerDateShift(_ context.Context, workerID string, date time.Time, shift entity.Shift) ([]*entity.WorkerAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(a entity.WorkerAssignment) bool {
		return a.WorkerID == workerID && sameDay(a.Date, date) && a.Shift == shift
	}), nil
}

func (r *WorkerAssignmentRepo) ListByDateShift(_ context.Context, date time.Time, shift entity.Shift) ([]*entity.WorkerAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(a entity.WorkerAssignment) bool {
		return sameDay(a.Date, date) && a.Shift == shift
	}), nil
}

func (r *WorkerAssignmentRepo) Commit(_ context.Context, a *entity.WorkerAssignment, allocatedHours decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailNextCommits > 0 {
		r.FailNextCommits--
		return domain.ErrConflict
	}

	committed := decimal.Zero
	for _, existing := range r.rows {
		if existing.WorkerID == a.WorkerID && sameDay(existing.Date, a.Date) && existing.Shift == a.Shift {
			committed = committed.Add(existing.Hours)
		}
	}
	if committed.Add(a.Hours).GreaterThan(allocatedHours) {
		return domain.ErrConflict
	}
	r.rows = append(r.rows, *a)
	return nil
}

func (r *WorkerAssignmentRepo) filter(keep func(entity.WorkerAssignment) bool) []*entity.WorkerAssignment {
	var out []*entity.WorkerAssignment
	for i := range r.rows {
		if keep(r.rows[i]) {
			c := r.rows[i]
			out = append(out, &c)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
