package repository

import (
	"context"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// WorkflowRepository workflow instances and their steps. Create persists the
// instance together with its generated steps; step updates go through
// UpdateStep so the instance's counters stay the engine's responsibility.
type WorkflowRepository interface {
	Create(ctx context.Context, w *entity.WorkflowInstance, steps []*entity.WorkflowStep) error
	GetInstance(ctx context.Context, id string) (*entity.WorkflowInstance, error)
	GetInstanceByOrder(ctx context.Context, orderID string) (*entity.WorkflowInstance, error)
	UpdateInstance(ctx context.Context, w *entity.WorkflowInstance) error
	GetStep(ctx context.Context, stepID string) (*entity.WorkflowStep, error)
	ListSteps(ctx context.Context, workflowID string) ([]*entity.WorkflowStep, error)
	UpdateStep(ctx context.Context, s *entity.WorkflowStep) error
	ListActiveInstances(ctx context.Context) ([]*entity.WorkflowInstance, error)
}
