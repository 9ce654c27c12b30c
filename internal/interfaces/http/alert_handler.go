package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sorbetes/garment-ops/internal/application/workflow"
	"github.com/sorbetes/garment-ops/internal/domain/entity"
)

// AlertHandler exposes operator notifications over HTTP.
type AlertHandler struct {
	engine *workflow.Engine
}

// NewAlertHandler builds the handler.
func NewAlertHandler(engine *workflow.Engine) *AlertHandler {
	return &AlertHandler{engine: engine}
}

type createAlertRequest struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	WorkflowID string `json:"workflow_id"`
	OrderID    string `json:"order_id"`
}

// Create registers a manual alert.
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var in createAlertRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	alert := &entity.ProductionAlert{
		Type:       entity.AlertType(in.Type),
		Severity:   entity.Severity(in.Severity),
		Title:      in.Title,
		Message:    in.Message,
		WorkflowID: in.WorkflowID,
		OrderID:    in.OrderID,
	}
	if err := h.engine.CreateAlert(c.Context(), alert); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": alert.ID})
}

// List returns unexpired alerts, newest first.
func (h *AlertHandler) List(c *fiber.Ctx) error {
	alerts, err := h.engine.ActiveAlerts(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(alerts), "alerts": alerts})
}

// MarkRead flags an alert as seen.
func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.engine.MarkAlertRead(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "alert read"})
}
