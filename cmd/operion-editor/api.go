// Package main provides the Operion workflow editor server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukex/operion-editor/pkg/autosave"
	"github.com/dukex/operion-editor/pkg/editor"
	"github.com/dukex/operion-editor/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	logger   *slog.Logger
	manager  *editor.Manager
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, manager *editor.Manager) *API {
	return &API{
		logger:   logger,
		manager:  manager,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.manager, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Operion Editor")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

// Start serves the API until SIGINT or SIGTERM. Dirty sessions are saved on the autosave
// schedule, and once more on shutdown. An empty schedule disables autosave.
func (a *API) Start(ctx context.Context, port int, schedule string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if schedule != "" {
		saver, err := autosave.New(a.manager, schedule, a.logger)
		if err != nil {
			return err
		}

		err = saver.Start(ctx)
		if err != nil {
			return err
		}

		defer saver.Stop()
	}

	app := a.App()

	listenErr := make(chan error, 1)

	go func() {
		listenErr <- app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	a.logger.InfoContext(ctx, "Operion Editor listening", "port", port)

	var err error

	select {
	case err = <-listenErr:
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if shutdownErr := app.ShutdownWithContext(shutdownCtx); shutdownErr != nil {
		a.logger.Error("Failed to shut down HTTP server", "error", shutdownErr)
	}

	if closeErr := a.manager.CloseAll(shutdownCtx); closeErr != nil {
		a.logger.Error("Failed to save sessions on shutdown", "error", closeErr)

		err = errors.Join(err, closeErr)
	}

	return err
}
