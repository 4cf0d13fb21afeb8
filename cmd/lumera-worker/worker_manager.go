package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumera-app/lumera/pkg/engine"
	"github.com/lumera-app/lumera/pkg/eventbus"
	"github.com/lumera-app/lumera/pkg/events"
)

// WorkerManager consumes trigger and resume events and hands each one to the
// runner. Firings are independent; the bus delivers each event to one worker.
type WorkerManager struct {
	id       string
	logger   *slog.Logger
	runner   *engine.Runner
	eventBus eventbus.EventBus
}

func NewWorkerManager(
	id string,
	runner *engine.Runner,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:       id,
		logger:   logger.With("module", "lumera-worker"),
		runner:   runner,
		eventBus: eventBus,
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	err := w.eventBus.Handle(events.WorkflowTriggeredEvent, w.handleWorkflowTriggered)
	if err != nil {
		return err
	}

	err = w.eventBus.Handle(events.DispatchResumeEvent, w.handleDispatchResume)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *WorkerManager) handleWorkflowTriggered(ctx context.Context, event any) error {
	triggeredEvent, ok := event.(*events.WorkflowTriggered)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for WorkflowTriggered")

		return nil
	}

	logger := w.logger.With(
		"workflow_id", triggeredEvent.WorkflowID,
		"client_id", triggeredEvent.ClientID,
		"event_id", triggeredEvent.ID,
	)
	logger.InfoContext(ctx, "Processing workflow triggered event", "trigger_type", triggeredEvent.TriggerType)

	record, err := w.runner.Run(ctx, triggeredEvent.WorkflowID, triggeredEvent.ClientID, triggeredEvent.TriggerData)

	switch {
	case errors.Is(err, engine.ErrWorkflowDisabled), errors.Is(err, engine.ErrWorkflowNotExecutable):
		// Stale or racing trigger; nothing to retry.
		logger.InfoContext(ctx, "Firing skipped", "reason", err)

		return nil
	case err != nil && record == nil:
		// No record exists yet, so redelivery is safe.
		logger.ErrorContext(ctx, "Failed to run firing", "error", err)

		return err
	case err != nil:
		// The record is sealed as failed; redelivery would start a second
		// firing for the same trigger.
		logger.ErrorContext(ctx, "Firing failed", "execution_id", record.ID, "error", err)

		return nil
	}

	if record != nil {
		logger.InfoContext(ctx, "Firing processed",
			"execution_id", record.ID,
			"state", record.State,
			"matched_branch_id", record.MatchedBranchID)
	}

	return nil
}

func (w *WorkerManager) handleDispatchResume(ctx context.Context, event any) error {
	resumeEvent, ok := event.(*events.DispatchResume)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for DispatchResume")

		return nil
	}

	logger := w.logger.With(
		"execution_id", resumeEvent.ExecutionID,
		"action_index", resumeEvent.ActionIndex,
		"event_id", resumeEvent.ID,
	)
	logger.InfoContext(ctx, "Processing dispatch resume event")

	record, err := w.runner.Resume(ctx, resumeEvent.ExecutionID, resumeEvent.ActionIndex)

	switch {
	case err != nil && record == nil:
		logger.ErrorContext(ctx, "Failed to resume firing", "error", err)

		return err
	case err != nil:
		logger.ErrorContext(ctx, "Resumed firing failed", "error", err)

		return nil
	}

	logger.InfoContext(ctx, "Firing resumed", "state", record.State)

	return nil
}
