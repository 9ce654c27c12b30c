package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/application/workflow"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// WorkflowHandler exposes the production workflow engine over HTTP.
type WorkflowHandler struct {
	engine *workflow.Engine
}

// NewWorkflowHandler builds the handler.
func NewWorkflowHandler(engine *workflow.Engine) *WorkflowHandler {
	return &WorkflowHandler{engine: engine}
}

// Create builds a workflow with the full stage sequence for an order.
func (h *WorkflowHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWorkflowRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	view, err := h.engine.CreateWorkflow(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// Get returns one workflow with its steps.
func (h *WorkflowHandler) Get(c *fiber.Ctx) error {
	view, err := h.engine.GetWorkflow(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// Start moves a PLANNED workflow to IN_PROGRESS.
func (h *WorkflowHandler) Start(c *fiber.Ctx) error {
	if err := h.engine.StartWorkflow(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "workflow started"})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Pause suspends an IN_PROGRESS workflow.
func (h *WorkflowHandler) Pause(c *fiber.Ctx) error {
	var in reasonRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.engine.PauseWorkflow(c.Context(), c.Params("id"), in.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "workflow paused"})
}

// Resume returns a PAUSED workflow to IN_PROGRESS.
func (h *WorkflowHandler) Resume(c *fiber.Ctx) error {
	if err := h.engine.ResumeWorkflow(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "workflow resumed"})
}

// Cancel terminates a workflow and its unfinished steps.
func (h *WorkflowHandler) Cancel(c *fiber.Ctx) error {
	var in reasonRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.engine.CancelWorkflow(c.Context(), c.Params("id"), in.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "workflow cancelled"})
}

// Progress returns the completion summary for dashboards.
func (h *WorkflowHandler) Progress(c *fiber.Ctx) error {
	progress, err := h.engine.WorkflowProgress(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(progress)
}

// StartStep begins a step once its dependencies and material allow it.
func (h *WorkflowHandler) StartStep(c *fiber.Ctx) error {
	if err := h.engine.StartStep(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "step started"})
}

// CompleteStep finishes a step, advancing or completing the workflow.
func (h *WorkflowHandler) CompleteStep(c *fiber.Ctx) error {
	var in dto.CompleteStepRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.engine.CompleteStep(c.Context(), c.Params("id"), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "step completed"})
}

// DelayStep flags a step as delayed and raises the alert.
func (h *WorkflowHandler) DelayStep(c *fiber.Ctx) error {
	var in reasonRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.engine.DelayStep(c.Context(), c.Params("id"), in.Reason); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "step delayed"})
}

type assignStepRequest struct {
	WorkerID string `json:"worker_id"`
	Shift    string `json:"shift"`
}

// AssignStep routes the assignment through the scheduler. Rejections come
// back with status REJECTED and alternatives, same as direct assignment.
func (h *WorkflowHandler) AssignStep(c *fiber.Ctx) error {
	var in assignStepRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.engine.AssignWorker(c.Context(), c.Params("id"), in.WorkerID, entity.Shift(in.Shift))
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if result.Status == dto.AssignmentCommitted {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

// Bottlenecks runs detection for one workflow.
func (h *WorkflowHandler) Bottlenecks(c *fiber.Ctx) error {
	analyses, err := h.engine.DetectBottlenecks(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(analyses), "bottlenecks": analyses})
}

// BottlenecksAll runs detection across every active workflow.
func (h *WorkflowHandler) BottlenecksAll(c *fiber.Ctx) error {
	analyses, err := h.engine.DetectBottlenecksAll(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(analyses), "bottlenecks": analyses})
}
