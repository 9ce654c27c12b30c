package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage fixed manufacturing stage sequence for a garment order.
type Stage string

const (
	StageIntake   Stage = "INTAKE"
	StageDesign   Stage = "DESIGN"
	StageCut      Stage = "CUT"
	StagePrint    Stage = "PRINT"
	StageSew      Stage = "SEW"
	StageQC       Stage = "QC"
	StagePack     Stage = "PACK"
	StageDelivery Stage = "DELIVERY"
)

// StageSequence is the canonical order steps are generated in.
var StageSequence = []Stage{
	StageIntake, StageDesign, StageCut, StagePrint,
	StageSew, StageQC, StagePack, StageDelivery,
}

// ConsumesMaterial reports whether the stage draws down raw material, which
// gates starting it on material availability.
func (s Stage) ConsumesMaterial() bool {
	return s == StageCut || s == StagePrint || s == StageSew
}

// WorkflowStatus workflow-level state machine.
type WorkflowStatus string

const (
	WorkflowPlanned    WorkflowStatus = "PLANNED"
	WorkflowInProgress WorkflowStatus = "IN_PROGRESS"
	WorkflowPaused     WorkflowStatus = "PAUSED"
	WorkflowCompleted  WorkflowStatus = "COMPLETED"
	WorkflowDelayed    WorkflowStatus = "DELAYED"
	WorkflowCancelled  WorkflowStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowCompleted || s == WorkflowCancelled
}

// StepStatus step-level state machine.
type StepStatus string

const (
	StepPlanned    StepStatus = "PLANNED"
	StepInProgress StepStatus = "IN_PROGRESS"
	StepCompleted  StepStatus = "COMPLETED"
	StepPaused     StepStatus = "PAUSED"
	StepDelayed    StepStatus = "DELAYED"
	StepCancelled  StepStatus = "CANCELLED"
)

// WorkflowInstance tracks one order's progress through the stage sequence.
type WorkflowInstance struct {
	ID               string
	OrderID          string
	Status           WorkflowStatus
	Priority         int
	CurrentStage     Stage
	TotalSteps       int
	CompletedSteps   int
	StartDate        time.Time
	EstimatedEndDate time.Time
	ActualEndDate    time.Time
	PauseReason      string
	Metadata         map[string]string
	CreatedAt        time.Time
}

// WorkflowStep one unit of work within a stage. Dependencies reference other
// step ids in the same workflow and must all be COMPLETED before this step
// may start.
type WorkflowStep struct {
	ID             string
	WorkflowID     string
	Stage          Stage
	Sequence       int
	Dependencies   []string
	EstimatedHours decimal.Decimal
	Status         StepStatus
	AssignedWorker string
	PlannedStart   time.Time
	PlannedEnd     time.Time
	ActualStart    time.Time
	ActualEnd      time.Time
	QualityScore   decimal.Decimal
	Notes          string
}

// ActualDuration returns the step's runtime so far. For running steps the
// clock keeps ticking against now; zero when the step never started.
func (s *WorkflowStep) ActualDuration(now time.Time) time.Duration {
	if s.ActualStart.IsZero() {
		return 0
	}
	end := s.ActualEnd
	if end.IsZero() {
		end = now
	}
	return end.Sub(s.ActualStart)
}
