package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/application/scheduler"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// SchedulingHandler exposes worker assignment and capacity over HTTP.
type SchedulingHandler struct {
	scheduler *scheduler.Scheduler
}

// NewSchedulingHandler builds the handler.
func NewSchedulingHandler(s *scheduler.Scheduler) *SchedulingHandler {
	return &SchedulingHandler{scheduler: s}
}

// Assign binds a worker to a task. Business rejections come back as a 200
// with status REJECTED and the ranked alternatives, not as an error.
func (h *SchedulingHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.scheduler.AssignWorkerToTask(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if result.Status == dto.AssignmentCommitted {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

type optimizeScheduleRequest struct {
	ScheduleIDs []string              `json:"schedule_ids"`
	Goals       dto.OptimizationGoals `json:"goals"`
}

// Optimize re-assigns workers across the given schedules according to the
// weighted goals.
func (h *SchedulingHandler) Optimize(c *fiber.Ctx) error {
	var in optimizeScheduleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.scheduler.OptimizeProductionSchedule(c.Context(), in.ScheduleIDs, in.Goals)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// LineCapacity computes line capacity for ?line_id=&date=&shift=.
func (h *SchedulingHandler) LineCapacity(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		return badDate(c)
	}
	capacity, err := h.scheduler.CalculateProductionCapacity(c.Context(), c.Query("line_id"), date, entity.Shift(c.Query("shift", string(entity.ShiftMorning))))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(capacity)
}

// WorkerCapacity computes one worker's remaining hours for ?date=&shift=.
func (h *SchedulingHandler) WorkerCapacity(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		return badDate(c)
	}
	capacity, err := h.scheduler.GetWorkerCapacity(c.Context(), c.Params("id"), date, entity.Shift(c.Query("shift", string(entity.ShiftMorning))))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(capacity)
}

// Metrics aggregates production performance for ?date=, optionally narrowed
// by ?line_id= or ?worker_id=.
func (h *SchedulingHandler) Metrics(c *fiber.Ctx) error {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		return badDate(c)
	}
	metrics, err := h.scheduler.GenerateProductionMetrics(c.Context(), date, c.Query("line_id"), c.Query("worker_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(metrics)
}

// parseDate accepts YYYY-MM-DD; empty means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", s)
}

func badDate(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date must be YYYY-MM-DD"})
}
