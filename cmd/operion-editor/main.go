package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/operion-editor/pkg/autosave"
	"github.com/dukex/operion-editor/pkg/cmd"
	"github.com/dukex/operion-editor/pkg/editor"
	"github.com/dukex/operion-editor/pkg/history"
	"github.com/dukex/operion-editor/pkg/log"
	"github.com/dukex/operion-editor/pkg/otelhelper"
	"github.com/dukex/operion-editor/pkg/palette"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	app := &cli.Command{
		Name:                  "operion-editor",
		Usage:                 "Edit workflows with undo and redo",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the editor server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file://, postgres://, redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type for editor notifications (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringSliceFlag{
				Name:    "kafka-brokers",
				Usage:   "Kafka brokers used when the event bus is kafka",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.IntFlag{
				Name:    "undo-limit",
				Usage:   "Number of commands each session can undo",
				Value:   history.DefaultMaxUndo,
				Sources: cli.EnvVars("UNDO_LIMIT"),
			},
			&cli.StringFlag{
				Name:    "autosave",
				Usage:   "Cron schedule for saving sessions with unsaved edits, empty to disable",
				Value:   autosave.DefaultSchedule,
				Sources: cli.EnvVars("AUTOSAVE_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces with OTLP over HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	if err := log.Setup(command.String("log-level")); err != nil {
		return err
	}

	logger := log.WithModule("operion-editor")

	logger.InfoContext(ctx, "Initializing Operion Editor")

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.StringSlice("kafka-brokers"), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	tracer := otelhelper.NoopTracer()

	if command.Bool("tracing") {
		var shutdown otelhelper.Shutdown

		tracer, shutdown, err = otelhelper.NewTracer(ctx, "operion-editor")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()
	}

	manager := editor.NewManager(
		persistence,
		palette.Default(),
		eventBus,
		editor.WithUndoLimit(command.Int("undo-limit")),
		editor.WithTracer(tracer),
		editor.WithLogger(logger),
	)

	api := NewAPI(logger, manager)

	return api.Start(ctx, command.Int("port"), command.String("autosave"))
}
