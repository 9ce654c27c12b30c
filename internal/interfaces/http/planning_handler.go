package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sorbetes/garment-ops/internal/application/dto"
	"github.com/sorbetes/garment-ops/internal/application/mrp"
)

// PlanningHandler exposes material requirements planning over HTTP.
type PlanningHandler struct {
	planner *mrp.Planner
}

// NewPlanningHandler builds the handler.
func NewPlanningHandler(planner *mrp.Planner) *PlanningHandler {
	return &PlanningHandler{planner: planner}
}

// GenerateMRP runs the planner for one order (?order_id=) or all open orders.
func (h *PlanningHandler) GenerateMRP(c *fiber.Ctx) error {
	results, err := h.planner.GenerateMRPPlan(c.Context(), c.Query("order_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(results), "results": results})
}

// ProjectStock returns the day-by-day stock projection for one material.
func (h *PlanningHandler) ProjectStock(c *fiber.Ctx) error {
	projection, err := h.planner.ProjectStockLevels(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"material_id": c.Params("id"), "projection": projection})
}

// ProjectAllStock projects every material in the catalog.
func (h *PlanningHandler) ProjectAllStock(c *fiber.Ctx) error {
	projections, err := h.planner.ProjectAllStockLevels(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(projections), "projections": projections})
}

// CreateRequisition registers a purchase requisition as a planned receipt.
func (h *PlanningHandler) CreateRequisition(c *fiber.Ctx) error {
	var in dto.CreateRequisitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	result, err := h.planner.CreatePurchaseRequisition(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// OptimizePlan consolidates the current shortfalls into supplier orders. It
// reruns the planner so the proposal always reflects live data.
func (h *PlanningHandler) OptimizePlan(c *fiber.Ctx) error {
	results, err := h.planner.GenerateMRPPlan(c.Context(), c.Query("order_id"))
	if err != nil {
		return writeError(c, err)
	}
	plan, err := h.planner.OptimizeMaterialPlan(c.Context(), results)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plan)
}
