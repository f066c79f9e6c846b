// Package main provides the Testsmith API server.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/engine"
	"github.com/testsmith-ai/testsmith/pkg/eventbus"
	"github.com/testsmith-ai/testsmith/pkg/knowledge"
	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/services"
	"github.com/testsmith-ai/testsmith/pkg/web"
)

type API struct {
	logger   *slog.Logger
	sessions *services.Session
	store    checkpoint.Store
	client   llm.Client
	validate *validator.Validate
	reaper   *services.Reaper
}

func NewAPI(logger *slog.Logger, client llm.Client, store checkpoint.Store, bus eventbus.EventBus) (*API, error) {
	router, err := engine.NewPipelineRouter(client, logger)
	if err != nil {
		return nil, err
	}

	runner := engine.NewRunner(router, store, bus, logger)

	return &API{
		logger:   logger,
		sessions: services.NewSession(runner, knowledge.NewFetcher(), store, logger),
		store:    store,
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.sessions, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: a.ready,
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Testsmith API")
	})

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/:id", handlers.GetSession)
	s.Post("/:id/resume", handlers.ResumeSession)
	s.Delete("/:id", handlers.AbandonSession)

	app.Get("/health", handlers.HealthCheck)

	return app
}

// ready checks the checkpoint store and the generation backend.
func (a *API) ready(c fiber.Ctx) bool {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := a.store.HealthCheck(ctx); err != nil {
		return false
	}

	return llm.VerifyConnection(ctx, a.client) == nil
}

func (a *API) StartReaper(ctx context.Context, maxAge time.Duration, schedule string) error {
	a.reaper = services.NewReaper(a.store, maxAge, a.logger)

	return a.reaper.Start(ctx, schedule)
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
