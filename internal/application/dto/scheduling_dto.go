package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assignment outcome statuses. Business rejections are results, not errors,
// so callers can present the alternatives.
const (
	AssignmentCommitted = "COMMITTED"
	AssignmentRejected  = "REJECTED"
)

// Rejection reasons.
const (
	ReasonInsufficientSkill = "INSUFFICIENT_SKILL"
	ReasonUnavailable       = "UNAVAILABLE"
	ReasonConflict          = "CONFLICT"
)

// AssignmentRequest asks the scheduler to bind a worker to a task.
type AssignmentRequest struct {
	WorkerID       string          `json:"worker_id"`
	ScheduleID     string          `json:"schedule_id"`
	WorkStationID  string          `json:"work_station_id,omitempty"`
	Date           time.Time       `json:"date"`
	Shift          string          `json:"shift"`
	RequiredSkill  string          `json:"required_skill"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`
}

// AlternativeWorker a substitute candidate, ranked by skill match then
// available hours.
type AlternativeWorker struct {
	WorkerID       string          `json:"worker_id"`
	SkillLevel     string          `json:"skill_level"`
	SkillMatch     float64         `json:"skill_match"`
	AvailableHours decimal.Decimal `json:"available_hours"`
}

// WorkerAssignmentResult outcome of an assignment request. On COMMITTED the
// window fields hold the computed schedule; on REJECTED the reason and up to
// five alternatives are set instead.
type WorkerAssignmentResult struct {
	Status       string              `json:"status"`
	AssignmentID string              `json:"assignment_id,omitempty"`
	WorkerID     string              `json:"worker_id"`
	SkillMatch   float64             `json:"skill_match"`
	Start        time.Time           `json:"start,omitempty"`
	End          time.Time           `json:"end,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	Alternatives []AlternativeWorker `json:"alternatives,omitempty"`
}

// ProductionCapacity aggregate hours for a line/date/shift. Computed, not
// stored.
type ProductionCapacity struct {
	LineID          string          `json:"line_id"`
	Date            time.Time       `json:"date"`
	Shift           string          `json:"shift"`
	WorkerCount     int             `json:"worker_count"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	AssignedHours   decimal.Decimal `json:"assigned_hours"`
	AvailableHours  decimal.Decimal `json:"available_hours"`
	UtilizationRate decimal.Decimal `json:"utilization_rate"`
	Efficiency      decimal.Decimal `json:"efficiency"`
}

// WorkerCapacity one worker's remaining hours for a date+shift.
type WorkerCapacity struct {
	WorkerID       string          `json:"worker_id"`
	Date           time.Time       `json:"date"`
	Shift          string          `json:"shift"`
	IsAvailable    bool            `json:"is_available"`
	AllocatedHours decimal.Decimal `json:"allocated_hours"`
	AssignedHours  decimal.Decimal `json:"assigned_hours"`
	AvailableHours decimal.Decimal `json:"available_hours"`
}

// OptimizationGoals weighted objectives for schedule optimization. Weights
// need not sum to 1; Normalize scales them (all-zero falls back to equal
// weights).
type OptimizationGoals struct {
	MinimizeTime    float64 `json:"minimize_time"`
	MinimizeCost    float64 `json:"minimize_cost"`
	MaximizeQuality float64 `json:"maximize_quality"`
	BalanceWorkload float64 `json:"balance_workload"`
}

// Normalize returns goals scaled to sum 1.
func (g OptimizationGoals) Normalize() OptimizationGoals {
	sum := g.MinimizeTime + g.MinimizeCost + g.MaximizeQuality + g.BalanceWorkload
	if sum <= 0 {
		return OptimizationGoals{MinimizeTime: 0.25, MinimizeCost: 0.25, MaximizeQuality: 0.25, BalanceWorkload: 0.25}
	}
	return OptimizationGoals{
		MinimizeTime:    g.MinimizeTime / sum,
		MinimizeCost:    g.MinimizeCost / sum,
		MaximizeQuality: g.MaximizeQuality / sum,
		BalanceWorkload: g.BalanceWorkload / sum,
	}
}

// ScheduleChange one re-assignment proposed and committed by the optimizer.
type ScheduleChange struct {
	ScheduleID   string    `json:"schedule_id"`
	FromWorkerID string    `json:"from_worker_id"`
	ToWorkerID   string    `json:"to_worker_id"`
	NewStart     time.Time `json:"new_start"`
	NewEnd       time.Time `json:"new_end"`
	Score        float64   `json:"score"`
	Improvements []string  `json:"improvements"`
}

// ProductionScheduleOptimization the optimizer's report.
type ProductionScheduleOptimization struct {
	Changes   []ScheduleChange `json:"changes"`
	Unchanged []string         `json:"unchanged"`
}

// CostBreakdown per-day production cost components.
type CostBreakdown struct {
	Labor    decimal.Decimal `json:"labor"`
	Overhead decimal.Decimal `json:"overhead"`
	Material decimal.Decimal `json:"material"`
	Total    decimal.Decimal `json:"total"`
}

// ProductionMetrics aggregate performance for a day, optionally narrowed to
// a line or a worker.
type ProductionMetrics struct {
	Date           time.Time       `json:"date"`
	LineID         string          `json:"line_id,omitempty"`
	WorkerID       string          `json:"worker_id,omitempty"`
	TotalOrders    int             `json:"total_orders"`
	OnTimeDelivery decimal.Decimal `json:"on_time_delivery"`
	Efficiency     decimal.Decimal `json:"efficiency"`
	DefectRate     decimal.Decimal `json:"defect_rate"`
	Throughput     decimal.Decimal `json:"throughput"`
	Cost           CostBreakdown   `json:"cost"`
}
