package entity

import "time"

// AlertType category of a production alert.
type AlertType string

const (
	AlertDelay      AlertType = "DELAY"
	AlertQuality    AlertType = "QUALITY"
	AlertMaterial   AlertType = "MATERIAL"
	AlertWorker     AlertType = "WORKER"
	AlertBottleneck AlertType = "BOTTLENECK"
)

// Severity shared four-level scale for alerts and bottlenecks.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ProductionAlert an operator-facing notification.
type ProductionAlert struct {
	ID         string
	Type       AlertType
	Severity   Severity
	Title      string
	Message    string
	WorkflowID string
	OrderID    string
	IsRead     bool
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Active reports whether the alert should appear in operator listings.
func (a *ProductionAlert) Active(now time.Time) bool {
	return a.ExpiresAt.IsZero() || a.ExpiresAt.After(now)
}

// BottleneckAnalysis a detected constraint at a step/stage. Computed per
// detection run, never stored.
type BottleneckAnalysis struct {
	WorkflowID     string
	StepID         string
	Stage          Stage
	Severity       Severity
	Cause          string
	OverrunRatio   float64
	EstimatedDelay time.Duration
	AffectedOrders []string
}
