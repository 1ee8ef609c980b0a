// Package main provides the Stayflow audit API server.
package main

import (
	"database/sql"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/stayware/stayflow/pkg/audit"
	"github.com/stayware/stayflow/pkg/web"
)

type API struct {
	logger   *slog.Logger
	db       *sql.DB
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, db *sql.DB) *API {
	return &API{
		logger:   logger,
		db:       db,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	recorder := audit.NewPostgresRecorder(a.db, a.logger)
	handlers := web.NewAPIHandlers(recorder, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Stayflow API")
	})

	app.Get("/audit-events", handlers.GetAuditEvents)
	app.Get("/entities/:type/:id/history", handlers.GetEntityHistory)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
