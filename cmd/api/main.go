package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sorbetes/garment-ops/internal/application/mrp"
	"github.com/sorbetes/garment-ops/internal/application/scheduler"
	"github.com/sorbetes/garment-ops/internal/application/workflow"
	"github.com/sorbetes/garment-ops/internal/infrastructure/postgres"
	httpRouter "github.com/sorbetes/garment-ops/internal/interfaces/http"
	"github.com/sorbetes/garment-ops/pkg/config"
	"github.com/sorbetes/garment-ops/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	orderRepo := postgres.NewOrderRepository(pool)
	materialRepo := postgres.NewMaterialInventoryRepository(pool)
	requirementRepo := postgres.NewMaterialRequirementRepository(pool)
	transactionRepo := postgres.NewMaterialTransactionRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	allocationRepo := postgres.NewWorkerAllocationRepository(pool)
	assignmentRepo := postgres.NewWorkerAssignmentRepository(pool)
	lineRepo := postgres.NewProductionLineRepository(pool)
	stationRepo := postgres.NewWorkStationRepository(pool)
	scheduleRepo := postgres.NewProductionScheduleRepository(pool)
	workflowRepo := postgres.NewWorkflowRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)

	planner := mrp.NewPlanner(orderRepo, materialRepo, requirementRepo, transactionRepo, cfg.Planning, log)
	sched := scheduler.NewScheduler(employeeRepo, allocationRepo, assignmentRepo, lineRepo, stationRepo, scheduleRepo, cfg.Planning, log)
	bus := workflow.NewBus(log)
	engine := workflow.NewEngine(workflowRepo, orderRepo, alertRepo, sched, planner, bus, cfg.Planning, log)

	// Log every workflow event; downstream consumers subscribe the same way.
	events, unsubscribe := bus.Subscribe(64)
	defer unsubscribe()
	go func() {
		for e := range events {
			log.Info().
				Str("event", string(e.Type)).
				Str("workflow_id", e.WorkflowID).
				Str("order_id", e.OrderID).
				Msg("workflow event")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Planner:   planner,
		Scheduler: sched,
		Engine:    engine,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
