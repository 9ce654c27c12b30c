package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorbetes/garment-ops/internal/domain"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

func TestCalculateProductionCapacity(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	f.lines.Put(entity.ProductionLine{ID: "line-1", Name: "Sewing A", IsActive: true})
	f.stations.Put(entity.WorkStation{ID: "st-1", LineID: "line-1", IsActive: true, Efficiency: decimalFromString(t, "0.9")})
	f.stations.Put(entity.WorkStation{ID: "st-2", LineID: "line-1", IsActive: true, Efficiency: decimalFromString(t, "0.8")})
	f.stations.Put(entity.WorkStation{ID: "st-3", LineID: "line-1", IsActive: false, Efficiency: decimalFromString(t, "0.1")})

	f.roster("w-1", date, entity.ShiftMorning, 8, entity.SkillIntermediate, 15)
	f.roster("w-2", date, entity.ShiftMorning, 8, entity.SkillAdvanced, 20)
	f.roster("w-3", date, entity.ShiftMorning, 8, entity.SkillBeginner, 10)

	f.assignments.Commit(context.Background(), &entity.WorkerAssignment{
		ID: "a-1", WorkerID: "w-1", Date: date, Shift: entity.ShiftMorning, Hours: dec(6),
	}, dec(8))

	cap, err := f.scheduler.CalculateProductionCapacity(context.Background(), "line-1", date, entity.ShiftMorning)
	require.NoError(t, err)
	assert.Equal(t, 3, cap.WorkerCount)
	assert.True(t, cap.TotalHours.Equal(dec(24)))
	assert.True(t, cap.AssignedHours.Equal(dec(6)))
	assert.True(t, cap.AvailableHours.Equal(dec(18)))
	assert.True(t, cap.UtilizationRate.Equal(dec(25)), "6/24 -> 25%%, got %s", cap.UtilizationRate)
	// Inactive stations never weigh in.
	assert.True(t, cap.Efficiency.Equal(decimalFromString(t, "0.85")))
}

func TestCalculateProductionCapacity_EmptyRoster(t *testing.T) {
	f := newSchedulerFixture(t)
	f.lines.Put(entity.ProductionLine{ID: "line-1", IsActive: true})

	cap, err := f.scheduler.CalculateProductionCapacity(context.Background(), "line-1", time.Now(), entity.ShiftNight)
	require.NoError(t, err)
	assert.Equal(t, 0, cap.WorkerCount)
	assert.True(t, cap.TotalHours.IsZero())
	assert.True(t, cap.UtilizationRate.IsZero())
}

func TestCalculateProductionCapacity_InactiveLine(t *testing.T) {
	f := newSchedulerFixture(t)
	f.lines.Put(entity.ProductionLine{ID: "line-1", IsActive: false})

	cap, err := f.scheduler.CalculateProductionCapacity(context.Background(), "line-1", time.Now(), entity.ShiftMorning)
	require.NoError(t, err)
	assert.Equal(t, 0, cap.WorkerCount)
	assert.True(t, cap.TotalHours.IsZero())
}

func TestCalculateProductionCapacity_UnknownLine(t *testing.T) {
	f := newSchedulerFixture(t)
	_, err := f.scheduler.CalculateProductionCapacity(context.Background(), "nope", time.Now(), entity.ShiftMorning)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetWorkerCapacity(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	f.roster("w-1", date, entity.ShiftMorning, 8, entity.SkillIntermediate, 15)

	f.assignments.Commit(context.Background(), &entity.WorkerAssignment{
		ID: "a-1", WorkerID: "w-1", Date: date, Shift: entity.ShiftMorning, Hours: dec(5),
	}, dec(8))

	wc, err := f.scheduler.GetWorkerCapacity(context.Background(), "w-1", date, entity.ShiftMorning)
	require.NoError(t, err)
	assert.True(t, wc.IsAvailable)
	assert.True(t, wc.AllocatedHours.Equal(dec(8)))
	assert.True(t, wc.AssignedHours.Equal(dec(5)))
	assert.True(t, wc.AvailableHours.Equal(dec(3)))
}

func TestGetWorkerCapacity_NotRostered(t *testing.T) {
	f := newSchedulerFixture(t)
	wc, err := f.scheduler.GetWorkerCapacity(context.Background(), "w-1", time.Now(), entity.ShiftMorning)
	require.NoError(t, err)
	assert.False(t, wc.IsAvailable)
	assert.True(t, wc.AllocatedHours.IsZero())
	assert.True(t, wc.AvailableHours.IsZero())
}
