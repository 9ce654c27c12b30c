package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWorkflowRequest input for workflow creation.
type CreateWorkflowRequest struct {
	OrderID  string            `json:"order_id"`
	Priority int               `json:"priority"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WorkflowStepView one step in a workflow response.
type WorkflowStepView struct {
	ID             string          `json:"id"`
	Stage          string          `json:"stage"`
	Sequence       int             `json:"sequence"`
	Status         string          `json:"status"`
	Dependencies   []string        `json:"dependencies,omitempty"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`
	AssignedWorker string          `json:"assigned_worker,omitempty"`
	PlannedStart   time.Time       `json:"planned_start"`
	PlannedEnd     time.Time       `json:"planned_end"`
	ActualStart    *time.Time      `json:"actual_start,omitempty"`
	ActualEnd      *time.Time      `json:"actual_end,omitempty"`
	QualityScore   decimal.Decimal `json:"quality_score"`
}

// WorkflowView workflow instance response.
type WorkflowView struct {
	ID               string             `json:"id"`
	OrderID          string             `json:"order_id"`
	Status           string             `json:"status"`
	Priority         int                `json:"priority"`
	CurrentStage     string             `json:"current_stage"`
	TotalSteps       int                `json:"total_steps"`
	CompletedSteps   int                `json:"completed_steps"`
	StartDate        time.Time          `json:"start_date"`
	EstimatedEndDate time.Time          `json:"estimated_end_date"`
	ActualEndDate    *time.Time         `json:"actual_end_date,omitempty"`
	Steps            []WorkflowStepView `json:"steps,omitempty"`
}

// WorkflowProgress summary used by dashboards.
type WorkflowProgress struct {
	WorkflowID      string  `json:"workflow_id"`
	OrderID         string  `json:"order_id"`
	Status          string  `json:"status"`
	CurrentStage    string  `json:"current_stage"`
	PercentComplete float64 `json:"percent_complete"`
	Late            bool    `json:"late"`
}

// CompleteStepRequest input for completing a step.
type CompleteStepRequest struct {
	QualityScore *decimal.Decimal `json:"quality_score,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// BottleneckView one detected constraint.
type BottleneckView struct {
	WorkflowID     string   `json:"workflow_id"`
	StepID         string   `json:"step_id"`
	Stage          string   `json:"stage"`
	Severity       string   `json:"severity"`
	Cause          string   `json:"cause"`
	OverrunRatio   float64  `json:"overrun_ratio"`
	EstimatedDelay string   `json:"estimated_delay"`
	AffectedOrders []string `json:"affected_orders"`
}

// AlertView operator notification response.
type AlertView struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Severity   string     `json:"severity"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	WorkflowID string     `json:"workflow_id,omitempty"`
	OrderID    string     `json:"order_id,omitempty"`
	IsRead     bool       `json:"is_read"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
