package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

func TestGenerateProductionMetrics(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-1", LineID: "line-1", WorkerID: "w-1",
		Status: entity.ScheduleCompleted, CompletedOnTime: true,
		PlannedStart: date, PlannedHours: dec(6), ActualHours: dec(4),
		UnitsProduced: dec(60), UnitsDefective: dec(3), MaterialCost: dec(100),
	})
	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-2", LineID: "line-1", WorkerID: "w-2",
		Status: entity.ScheduleCompleted, CompletedOnTime: false,
		PlannedStart: date, PlannedHours: dec(4), ActualHours: dec(4),
		UnitsProduced: dec(40), UnitsDefective: dec(2), MaterialCost: dec(50),
	})

	m, err := f.scheduler.GenerateProductionMetrics(context.Background(), date, "line-1", "")
	require.NoError(t, err)

	assert.Equal(t, 2, m.TotalOrders)
	assert.True(t, m.OnTimeDelivery.Equal(dec(50)), "1 of 2 on time, got %s", m.OnTimeDelivery)
	assert.True(t, m.Efficiency.Equal(dec(125)), "planned 10 / actual 8, got %s", m.Efficiency)
	assert.True(t, m.DefectRate.Equal(dec(5)), "5 of 100 units, got %s", m.DefectRate)
	assert.True(t, m.Throughput.Equal(decimalFromString(t, "12.5")), "100 units / 8 h, got %s", m.Throughput)

	// Labor 8h * 75, overhead 8h * 25, material summed.
	assert.True(t, m.Cost.Labor.Equal(dec(600)))
	assert.True(t, m.Cost.Overhead.Equal(dec(200)))
	assert.True(t, m.Cost.Material.Equal(dec(150)))
	assert.True(t, m.Cost.Total.Equal(dec(950)))
}

func TestGenerateProductionMetrics_EmptyDay(t *testing.T) {
	f := newSchedulerFixture(t)

	m, err := f.scheduler.GenerateProductionMetrics(context.Background(), time.Now(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, m.TotalOrders)
	assert.True(t, m.OnTimeDelivery.IsZero())
	assert.True(t, m.Efficiency.IsZero())
	assert.True(t, m.DefectRate.IsZero())
	assert.True(t, m.Throughput.IsZero())
	assert.True(t, m.Cost.Total.IsZero())
}

func TestGenerateProductionMetrics_WorkerFilter(t *testing.T) {
	f := newSchedulerFixture(t)
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-1", WorkerID: "w-1", PlannedStart: date,
		Status: entity.ScheduleCompleted, CompletedOnTime: true,
		PlannedHours: dec(4), ActualHours: dec(4), UnitsProduced: dec(10),
	})
	f.schedules.Put(entity.ProductionSchedule{
		ID: "sch-2", WorkerID: "w-2", PlannedStart: date,
		Status: entity.ScheduleInProgress,
		PlannedHours: dec(4), ActualHours: dec(2), UnitsProduced: dec(5),
	})

	m, err := f.scheduler.GenerateProductionMetrics(context.Background(), date, "", "w-1")
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalOrders)
	assert.True(t, m.OnTimeDelivery.Equal(dec(100)))
}
