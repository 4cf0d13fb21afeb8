// Package main provides the Lumera API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/lumera-app/lumera/pkg/directory"
	"github.com/lumera-app/lumera/pkg/engine"
	"github.com/lumera-app/lumera/pkg/eventbus"
	"github.com/lumera-app/lumera/pkg/persistence"
	"github.com/lumera-app/lumera/pkg/registry"
	"github.com/lumera-app/lumera/pkg/segment"
	"github.com/lumera-app/lumera/pkg/services"
	"github.com/lumera-app/lumera/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	directory   directory.Directory
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	dir directory.Directory,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		directory:   dir,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence)
	publishingService := services.NewPublishing(a.persistence)
	statsService := services.NewStats(a.persistence)

	evaluator := engine.NewEvaluator(a.logger)
	segmentFilter := segment.NewFilter(evaluator, a.directory, a.logger)

	handlers := web.NewAPIHandlers(
		workflowService,
		publishingService,
		statsService,
		segmentFilter,
		a.validate,
		a.registry,
		a.eventBus,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Lumera API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)
	w.Patch("/:id/enabled", handlers.SetWorkflowEnabled)
	w.Post("/:id/trigger", handlers.TriggerWorkflow)
	w.Get("/:id/stats", handlers.GetWorkflowStats)
	w.Post("/groups/:groupId/create-draft", handlers.CreateDraftFromPublished)

	e := app.Group("/executions")
	e.Get("/", handlers.GetExecutions)
	e.Get("/:id", handlers.GetExecution)

	app.Post("/segments/preview", handlers.PreviewSegment)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
