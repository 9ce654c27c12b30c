package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionLine a physical line on the factory floor.
type ProductionLine struct {
	ID       string
	Name     string
	IsActive bool
}

// WorkStation a station within a line (cutting table, printer, sewing cell).
// Efficiency is a 0..1 multiplier against nominal throughput.
type WorkStation struct {
	ID         string
	LineID     string
	Name       string
	IsActive   bool
	Efficiency decimal.Decimal
}

// ScheduleStatus lifecycle of a production schedule entry.
type ScheduleStatus string

const (
	SchedulePlanned    ScheduleStatus = "PLANNED"
	ScheduleInProgress ScheduleStatus = "IN_PROGRESS"
	ScheduleCompleted  ScheduleStatus = "COMPLETED"
	ScheduleCancelled  ScheduleStatus = "CANCELLED"
)

// ProductionSchedule is one order's booked slot on a line: the planned and
// actual window, the worker holding it, and the output counters the metrics
// report aggregates.
type ProductionSchedule struct {
	ID              string
	OrderID         string
	LineID          string
	WorkerID        string
	RequiredSkill   SkillLevel
	Shift           Shift
	Status          ScheduleStatus
	PlannedStart    time.Time
	PlannedEnd      time.Time
	ActualStart     time.Time
	ActualEnd       time.Time
	PlannedHours    decimal.Decimal
	ActualHours     decimal.Decimal
	UnitsProduced   decimal.Decimal
	UnitsDefective  decimal.Decimal
	MaterialCost    decimal.Decimal
	CompletedOnTime bool
}
