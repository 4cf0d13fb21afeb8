package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumera-app/lumera/pkg/directory"
	"github.com/lumera-app/lumera/pkg/eventbus"
	"github.com/lumera-app/lumera/pkg/events"
	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
	"github.com/lumera-app/lumera/pkg/waitqueue"
)

// birthdayEvent schedules fan out to clients whose birthday matches the poll
// date; any other event fans out to the whole directory.
const birthdayEvent = "birthday"

// Scheduler polls due schedule entries and due wait resumptions and turns
// both into events for the workers. It never runs firings itself.
type Scheduler struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	directory   directory.Directory
	waitQueue   waitqueue.WaitQueue
	eventBus    eventbus.EventBus
	interval    time.Duration
	now         func() time.Time
}

func NewScheduler(
	id string,
	persist persistence.Persistence,
	dir directory.Directory,
	waitQueue waitqueue.WaitQueue,
	eventBus eventbus.EventBus,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &Scheduler{
		id:          id,
		logger:      logger.With("module", "scheduler"),
		persistence: persist,
		directory:   dir,
		waitQueue:   waitQueue,
		eventBus:    eventBus,
		interval:    interval,
		now:         time.Now,
	}
}

// Start runs the poll loop until a termination signal arrives.
func (s *Scheduler) Start(ctx context.Context) {
	sCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logger.Info("Starting scheduler", "poll_interval", s.interval)

	s.handleSignals(cancel)
	s.run(sCtx)
}

func (s *Scheduler) handleSignals(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		s.logger.Info("Received signal, shutting down gracefully...", "signal", sig)
		cancel()
	}()
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First poll happens immediately, not one interval in.
	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled, stopping...")

			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	now := s.now().UTC()

	s.processSchedules(ctx, now)
	s.processWaits(ctx, now)
}

// processSchedules fires every due schedule entry and advances its next due
// time. Advancing happens even when the fire is skipped so a broken entry
// cannot wedge the poll loop.
func (s *Scheduler) processSchedules(ctx context.Context, now time.Time) {
	due, err := s.persistence.ScheduleRepository().ListDue(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list due schedules", "error", err)

		return
	}

	for _, schedule := range due {
		logger := s.logger.With("schedule_id", schedule.ID, "workflow_group_id", schedule.WorkflowID)

		if err := s.fireSchedule(ctx, logger, schedule, now); err != nil {
			logger.ErrorContext(ctx, "Failed to fire schedule", "error", err)
		}

		if err := schedule.UpdateNextDueAt(); err != nil {
			logger.ErrorContext(ctx, "Failed to advance schedule", "error", err)

			continue
		}

		if err := s.persistence.ScheduleRepository().Save(ctx, schedule); err != nil {
			logger.ErrorContext(ctx, "Failed to save schedule", "error", err)
		}
	}
}

func (s *Scheduler) fireSchedule(ctx context.Context, logger *slog.Logger, schedule *models.Schedule, now time.Time) error {
	workflow, err := s.persistence.WorkflowRepository().GetPublishedByGroup(ctx, schedule.WorkflowID)
	if err != nil {
		if errors.Is(err, persistence.ErrPublishedWorkflowNotFound) {
			// The group is mid-republish or was unpublished after the
			// schedule entry was written. Skip this occurrence.
			logger.WarnContext(ctx, "No published version for scheduled group, skipping")

			return nil
		}

		return err
	}

	clients, err := s.clientsForEvent(ctx, schedule.Event, now)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Firing schedule",
		"workflow_id", workflow.ID,
		"event", schedule.Event,
		"clients", len(clients))

	for _, client := range clients {
		event := events.WorkflowTriggered{
			BaseEvent: events.BaseEvent{
				ID:         s.eventBus.GenerateID(),
				Type:       events.WorkflowTriggeredEvent,
				Timestamp:  now,
				WorkflowID: workflow.ID,
				WorkerID:   s.id,
			},
			ClientID:    client.ID,
			TriggerType: string(models.TriggerSchedule),
			TriggerData: map[string]any{
				"event":         schedule.Event,
				"scheduled_for": schedule.NextDueAt,
			},
		}

		if err := s.eventBus.Publish(ctx, workflow.ID, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish triggered event",
				"client_id", client.ID, "error", err)
		}
	}

	return nil
}

func (s *Scheduler) clientsForEvent(ctx context.Context, event string, now time.Time) ([]*models.Client, error) {
	if event == birthdayEvent {
		return s.directory.BirthdaysOn(ctx, int(now.Month()), now.Day())
	}

	return s.directory.List(ctx)
}

// processWaits drains due resume points and asks a worker to continue each
// suspended firing. Pop is destructive, so a resume that fails to publish is
// pushed back for the next poll.
func (s *Scheduler) processWaits(ctx context.Context, now time.Time) {
	points, err := s.waitQueue.PopDue(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to pop due waits", "error", err)

		return
	}

	for _, point := range points {
		event := events.DispatchResume{
			BaseEvent: events.BaseEvent{
				ID:         s.eventBus.GenerateID(),
				Type:       events.DispatchResumeEvent,
				Timestamp:  now,
				WorkflowID: point.WorkflowID,
				WorkerID:   s.id,
			},
			ExecutionID: point.ExecutionID,
			ClientID:    point.ClientID,
			ActionIndex: point.ActionIndex,
		}

		if err := s.eventBus.Publish(ctx, point.WorkflowID, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish resume event",
				"execution_id", point.ExecutionID, "error", err)

			if pushErr := s.waitQueue.Push(ctx, point); pushErr != nil {
				s.logger.ErrorContext(ctx, "Failed to requeue resume point",
					"execution_id", point.ExecutionID, "error", pushErr)
			}

			continue
		}

		s.logger.InfoContext(ctx, "Resume published",
			"execution_id", point.ExecutionID,
			"action_index", point.ActionIndex)
	}
}
