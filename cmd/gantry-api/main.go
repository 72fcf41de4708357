package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/stationml/gantry/pkg/cmd"
	"github.com/stationml/gantry/pkg/comfy"
	"github.com/stationml/gantry/pkg/injector"
	"github.com/stationml/gantry/pkg/log"
	"github.com/stationml/gantry/pkg/otelhelper"
	"github.com/stationml/gantry/pkg/services"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "gantry-api",
		Usage:                 "Expose workflow graphs as agent-invocable tools",
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
				Name:    "data-url",
				Usage:   "Root directory holding graphs/ and tools.json",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATA_URL"),
			},
			&cli.StringFlag{
				Name:    "comfyui-url",
				Usage:   "Remote execution endpoint; leave empty to return mutated graphs instead of executing them",
				Sources: cli.EnvVars("COMFYUI_URL"),
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "Interval between remote job status polls",
				Value:   time.Second,
				Sources: cli.EnvVars("POLL_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "poll-timeout",
				Usage:   "Overall budget for waiting on a remote job",
				Value:   2 * time.Minute,
				Sources: cli.EnvVars("POLL_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export invocation traces via OTLP",
				Sources: cli.EnvVars("TRACING"),
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

			logger.InfoContext(ctx, "Initializing Gantry API")

			persistence := cmd.NewPersistence(command.String("data-url"), logger)

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			registry, err := cmd.NewRegistry(ctx, logger, persistence)
			if err != nil {
				return err
			}

			toolService := services.NewTools(logger, persistence, registry, injector.New())

			if comfyURL := command.String("comfyui-url"); comfyURL != "" {
				toolService.WithExecution(
					comfy.NewClient(comfyURL, logger),
					command.Duration("poll-interval"),
					command.Duration("poll-timeout"),
				)
			}

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "gantry-api")
				if err != nil {
					return err
				}

				toolService.WithTracer(tracer)
			}

			api := NewAPI(logger, registry, toolService)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
