package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sorbetes/garment-ops/internal/application/mrp"
	"github.com/sorbetes/garment-ops/internal/application/scheduler"
	"github.com/sorbetes/garment-ops/internal/application/workflow"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	Planner   *mrp.Planner
	Scheduler *scheduler.Scheduler
	Engine    *workflow.Engine
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Material requirements planning
	planning := api.Group("/planning")
	planningHandler := NewPlanningHandler(deps.Planner)
	planning.Post("/mrp", planningHandler.GenerateMRP)
	planning.Get("/materials/projection", planningHandler.ProjectAllStock)
	planning.Get("/materials/:id/projection", planningHandler.ProjectStock)
	planning.Post("/requisitions", planningHandler.CreateRequisition)
	planning.Post("/optimize", planningHandler.OptimizePlan)

	// Production scheduling
	scheduling := api.Group("/scheduling")
	schedulingHandler := NewSchedulingHandler(deps.Scheduler)
	scheduling.Post("/assignments", schedulingHandler.Assign)
	scheduling.Post("/optimize", schedulingHandler.Optimize)
	scheduling.Get("/capacity", schedulingHandler.LineCapacity)
	scheduling.Get("/workers/:id/capacity", schedulingHandler.WorkerCapacity)
	scheduling.Get("/metrics", schedulingHandler.Metrics)

	// Workflow engine
	workflows := api.Group("/workflows")
	workflowHandler := NewWorkflowHandler(deps.Engine)
	workflows.Post("/", workflowHandler.Create)
	workflows.Get("/bottlenecks", workflowHandler.BottlenecksAll)
	workflows.Get("/:id", workflowHandler.Get)
	workflows.Post("/:id/start", workflowHandler.Start)
	workflows.Post("/:id/pause", workflowHandler.Pause)
	workflows.Post("/:id/resume", workflowHandler.Resume)
	workflows.Post("/:id/cancel", workflowHandler.Cancel)
	workflows.Get("/:id/progress", workflowHandler.Progress)
	workflows.Get("/:id/bottlenecks", workflowHandler.Bottlenecks)
	workflows.Post("/steps/:id/start", workflowHandler.StartStep)
	workflows.Post("/steps/:id/complete", workflowHandler.CompleteStep)
	workflows.Post("/steps/:id/delay", workflowHandler.DelayStep)
	workflows.Post("/steps/:id/assign", workflowHandler.AssignStep)

	// Alerts
	alerts := api.Group("/alerts")
	alertHandler := NewAlertHandler(deps.Engine)
	alerts.Post("/", alertHandler.Create)
	alerts.Get("/", alertHandler.List)
	alerts.Post("/:id/read", alertHandler.MarkRead)
}
