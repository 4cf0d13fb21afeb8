package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/lumera-app/lumera/pkg/cmd"
	"github.com/lumera-app/lumera/pkg/engine"
	"github.com/lumera-app/lumera/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "lumera-worker",
		EnableShellCompletion: true,
		Usage:                 "Start workers to run workflow firings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "wait-queue-url",
				Usage:   "Wait queue URL (redis://... for durable waits, empty for in-memory)",
				Value:   "",
				Sources: cli.EnvVars("WAIT_QUEUE_URL"),
			},
			&cli.StringFlag{
				Name:    "directory-seed",
				Usage:   "Path to a YAML file seeding the client directory",
				Value:   "",
				Sources: cli.EnvVars("DIRECTORY_SEED"),
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("lumera-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Lumera Worker")

			directory, err := cmd.NewDirectory(command.String("directory-seed"))
			if err != nil {
				return err
			}

			registry := cmd.NewRegistry(logger, directory)

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "lumera-worker", logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			waitQueue, err := cmd.NewWaitQueue(command.String("wait-queue-url"))
			if err != nil {
				return err
			}
			defer func() {
				if err := waitQueue.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close wait queue", "error", err)
				}
			}()

			evaluator := engine.NewEvaluator(logger)
			selector := engine.NewSelector(evaluator, logger)
			dispatcher := engine.NewDispatcher(registry, persistence.ExecutionRepository(), waitQueue, eventBus, logger)
			runner := engine.NewRunner(persistence, directory, selector, dispatcher, eventBus, logger, workerID)

			worker := NewWorkerManager(workerID, runner, eventBus, logger)

			if err := worker.Start(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to start worker", "error", err)
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
