package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/testsmith-ai/testsmith/pkg/cmd"
	"github.com/testsmith-ai/testsmith/pkg/eventbus"
	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/log"
	"github.com/testsmith-ai/testsmith/pkg/otelhelper"
)

const defaultPort = 9080

func main() {
	command := &cli.Command{
		Name:                  "testsmith-api",
		Usage:                 "Generate reviewed test scripts from natural-language feature descriptions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Checkpoint store URL (memory://, file://<dir>, redis://, postgres://)",
				Value:   "memory://",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel); empty disables events",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:     "llm-provider",
				Usage:    "Generation backend (anthropic, openai)",
				Required: true,
				Sources:  cli.EnvVars("LLM_PROVIDER"),
			},
			&cli.StringFlag{
				Name:     "llm-api-key",
				Usage:    "API key for the generation backend",
				Required: true,
				Sources:  cli.EnvVars("LLM_API_KEY"),
			},
			&cli.StringFlag{
				Name:     "llm-model",
				Usage:    "Model identifier for the generation backend",
				Required: true,
				Sources:  cli.EnvVars("LLM_MODEL"),
			},
			&cli.StringFlag{
				Name:    "llm-base-url",
				Usage:   "Override the generation backend base URL",
				Sources: cli.EnvVars("LLM_BASE_URL"),
			},
			&cli.DurationFlag{
				Name:    "session-max-age",
				Usage:   "Age after which parked sessions are reaped",
				Value:   7 * 24 * time.Hour,
				Sources: cli.EnvVars("SESSION_MAX_AGE"),
			},
			&cli.StringFlag{
				Name:    "reaper-schedule",
				Usage:   "Cron schedule for the checkpoint reaper",
				Value:   "@hourly",
				Sources: cli.EnvVars("REAPER_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OTLP trace export for pipeline stages",
				Sources: cli.EnvVars("ENABLE_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.Info("Initializing Testsmith API")

			if command.Bool("tracing") {
				tp, err := otelhelper.InitTracer(ctx, "testsmith-api")
				if err != nil {
					return err
				}

				defer func() {
					if err := tp.Shutdown(context.Background()); err != nil {
						logger.Error("Failed to shut down tracer provider", "error", err)
					}
				}()
			}

			store, err := cmd.NewCheckpointStore(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.Error("Failed to close checkpoint store", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(logger, command.String("event-bus"), "testsmith-api", command.String("kafka-brokers"))
			if err != nil {
				return err
			}

			if eventBus != nil {
				defer func() {
					if err := eventBus.Close(); err != nil {
						logger.Error("Failed to close event bus", "error", err)
					}
				}()

				if err := eventbus.RegisterAuditLog(ctx, eventBus, log.WithModule("audit")); err != nil {
					return err
				}
			}

			client, err := llm.NewClient(llm.Config{
				Provider: command.String("llm-provider"),
				APIKey:   command.String("llm-api-key"),
				Model:    command.String("llm-model"),
				BaseURL:  command.String("llm-base-url"),
			})
			if err != nil {
				return err
			}

			api, err := NewAPI(logger, client, store, eventBus)
			if err != nil {
				return err
			}

			if err := api.StartReaper(ctx, command.Duration("session-max-age"), command.String("reaper-schedule")); err != nil {
				return err
			}

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("api").Error("Testsmith API exited with error", "error", err)
		os.Exit(1)
	}
}
