// Package main provides the Gantry API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/stationml/gantry/pkg/services"
	"github.com/stationml/gantry/pkg/tools"
	"github.com/stationml/gantry/pkg/web"
)

type API struct {
	logger      *slog.Logger
	registry    *tools.Registry
	toolService *services.Tools
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	registry *tools.Registry,
	toolService *services.Tools,
) *API {
	return &API{
		logger:      logger,
		registry:    registry,
		toolService: toolService,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.toolService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Gantry API")
	})

	t := app.Group("/tools")
	t.Get("/", handlers.ListTools)
	t.Post("/:name/invoke", handlers.InvokeTool)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
