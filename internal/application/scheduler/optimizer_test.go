package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

func equalGoals() dto.OptimizationGoals {
	return dto.OptimizationGoals{MinimizeTime: 1, MinimizeCost: 1, MaximizeQuality: 1, BalanceWorkload: 1}
}

func TestOptimizeProductionSchedule_MovesToBetterWorker(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	// w-2 matches the skill just as well but is cheaper, so with equal
	// weights it scores above the incumbent.
	f.roster("w-1", date, entity.ShiftMorning, 8, entity.SkillIntermediate, 20)
	f.roster("w-2", date, entity.ShiftMorning, 8, entity.SkillAdvanced, 10)

	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-1", WorkerID: "w-1",
		RequiredSkill: entity.SkillIntermediate, Shift: entity.ShiftMorning,
		Status: entity.SchedulePlanned, PlannedStart: date, PlannedHours: dec(4),
	})

	out, err := f.scheduler.OptimizeProductionSchedule(context.Background(), []string{"sch-1"}, equalGoals())
	require.NoError(t, err)
	require.Len(t, out.Changes, 1)
	assert.Empty(t, out.Unchanged)

	change := out.Changes[0]
	assert.Equal(t, "sch-1", change.ScheduleID)
	assert.Equal(t, "w-1", change.FromWorkerID)
	assert.Equal(t, "w-2", change.ToWorkerID)
	assert.InDelta(t, 0.875, change.Score, 1e-9)
	assert.Contains(t, change.Improvements, "lower hourly rate (10.00 vs 20.00)")

	// The move is persisted, not just reported.
	sch, err := f.schedules.GetByID(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "w-2", sch.WorkerID)
	assert.Equal(t, date, sch.PlannedStart)
	assert.Equal(t, date.AddDate(0, 0, 1), sch.PlannedEnd)

	// And the hours are booked against the new worker.
	committed, err := f.assignments.ListByWorkerDateShift(context.Background(), "w-2", date, entity.ShiftMorning)
	require.NoError(t, err)
	require.Len(t, committed, 1)
	assert.True(t, committed[0].Hours.Equal(dec(4)))
}

func TestOptimizeProductionSchedule_KeepsBestWorker(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	f.roster("w-1", date, entity.ShiftMorning, 8, entity.SkillAdvanced, 10)
	f.roster("w-2", date, entity.ShiftMorning, 8, entity.SkillAdvanced, 20)

	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-1", WorkerID: "w-1",
		RequiredSkill: entity.SkillIntermediate, Shift: entity.ShiftMorning,
		Status: entity.SchedulePlanned, PlannedStart: date, PlannedHours: dec(4),
	})

	out, err := f.scheduler.OptimizeProductionSchedule(context.Background(), []string{"sch-1"}, equalGoals())
	require.NoError(t, err)
	assert.Empty(t, out.Changes)
	assert.Equal(t, []string{"sch-1"}, out.Unchanged)
}

func TestOptimizeProductionSchedule_CompletedLeftAlone(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	f.roster("w-2", date, entity.ShiftMorning, 8, entity.SkillAdvanced, 10)

	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-1", WorkerID: "w-1",
		RequiredSkill: entity.SkillIntermediate, Shift: entity.ShiftMorning,
		Status: entity.ScheduleCompleted, PlannedStart: date, PlannedHours: dec(4),
	})

	out, err := f.scheduler.OptimizeProductionSchedule(context.Background(), []string{"sch-1"}, equalGoals())
	require.NoError(t, err)
	assert.Empty(t, out.Changes)
	assert.Equal(t, []string{"sch-1"}, out.Unchanged)
}

func TestOptimizeProductionSchedule_StaffsUnassignedSchedule(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	f.roster("w-1", date, entity.ShiftMorning, 8, entity.SkillIntermediate, 15)

	f.schedules.Put(entity.ProductionSchedule{
		ID:            "sch-1",
		RequiredSkill: entity.SkillIntermediate, Shift: entity.ShiftMorning,
		Status: entity.SchedulePlanned, PlannedStart: date, PlannedHours: dec(4),
	})

	out, err := f.scheduler.OptimizeProductionSchedule(context.Background(), []string{"sch-1"}, equalGoals())
	require.NoError(t, err)
	require.Len(t, out.Changes, 1)
	assert.Empty(t, out.Changes[0].FromWorkerID)
	assert.Equal(t, "w-1", out.Changes[0].ToWorkerID)
	assert.Equal(t, []string{"schedule staffed with INTERMEDIATE worker"}, out.Changes[0].Improvements)
}

func TestOptimizeProductionSchedule_UnknownSchedule(t *testing.T) {
	f := newSchedulerFixture(t)

	_, err := f.scheduler.OptimizeProductionSchedule(context.Background(), []string{"nope"}, equalGoals())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOptimizeProductionSchedule_LostRaceLeavesScheduleUntouched(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	f.roster("w-1", date, entity.ShiftMorning, 8, entity.SkillIntermediate, 20)
	f.roster("w-2", date, entity.ShiftMorning, 8, entity.SkillAdvanced, 10)

	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-1", WorkerID: "w-1",
		RequiredSkill: entity.SkillIntermediate, Shift: entity.ShiftMorning,
		Status: entity.SchedulePlanned, PlannedStart: date, PlannedHours: dec(4),
	})

	f.assignments.FailNextCommits = 1
	out, err := f.scheduler.OptimizeProductionSchedule(context.Background(), []string{"sch-1"}, equalGoals())
	require.NoError(t, err)
	assert.Empty(t, out.Changes)
	assert.Equal(t, []string{"sch-1"}, out.Unchanged)

	sch, err := f.schedules.GetByID(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, "w-1", sch.WorkerID)
}
