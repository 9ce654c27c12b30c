package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift fixed daily work period.
type Shift string

const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftNight     Shift = "NIGHT"
)

// SkillLevel ordinal proficiency scale for sewing/printing/cutting work.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "BEGINNER"
	SkillIntermediate SkillLevel = "INTERMEDIATE"
	SkillAdvanced     SkillLevel = "ADVANCED"
)

// Ordinal maps the skill scale to {1,2,3}. Unknown levels map to 0 so a
// malformed record never satisfies a requirement.
func (s SkillLevel) Ordinal() int {
	switch s {
	case SkillBeginner:
		return 1
	case SkillIntermediate:
		return 2
	case SkillAdvanced:
		return 3
	default:
		return 0
	}
}

// Employee is a production worker.
type Employee struct {
	ID         string
	Name       string
	BaseSalary decimal.Decimal
	IsActive   bool
}

// WorkerAllocation is a worker's shift roster entry for one date: how many
// hours they are available and at what skill level and rate.
type WorkerAllocation struct {
	WorkerID       string
	Date           time.Time
	Shift          Shift
	HoursAllocated decimal.Decimal
	SkillLevel     SkillLevel
	HourlyRate     decimal.Decimal
}

// WorkerAssignment binds a worker (and optionally a station) to a schedule
// for a date. Immutable once committed; re-assignment creates a new record.
type WorkerAssignment struct {
	ID            string
	WorkerID      string
	WorkStationID string
	ScheduleID    string
	Date          time.Time
	Shift         Shift
	Hours         decimal.Decimal
	CreatedAt     time.Time
}
