package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/lumera-app/lumera/pkg/cmd"
	"github.com/lumera-app/lumera/pkg/log"
)

const defaultPollInterval = 15 * time.Second

func main() {
	command := &cli.Command{
		Name:                  "lumera-scheduler",
		EnableShellCompletion: true,
		Usage:                 "Fire scheduled workflow triggers and due wait resumptions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "scheduler-id",
				Aliases: []string{"id"},
				Usage:   "Custom scheduler ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("SCHEDULER_ID"),
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
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "How often to poll for due schedules and waits",
				Value:   defaultPollInterval,
				Sources: cli.EnvVars("POLL_INTERVAL"),
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

			schedulerID := command.String("scheduler-id")
			if schedulerID == "" {
				schedulerID = "scheduler-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("lumera-scheduler").With("scheduler_id", schedulerID)

			logger.InfoContext(ctx, "Initializing Lumera Scheduler")

			directory, err := cmd.NewDirectory(command.String("directory-seed"))
			if err != nil {
				return err
			}

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "lumera-scheduler", logger)
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

			scheduler := NewScheduler(
				schedulerID,
				persistence,
				directory,
				waitQueue,
				eventBus,
				command.Duration("poll-interval"),
				logger,
			)

			scheduler.Start(ctx)

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
