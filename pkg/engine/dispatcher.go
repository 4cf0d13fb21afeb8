package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lumera-app/lumera/pkg/eventbus"
	"github.com/lumera-app/lumera/pkg/events"
	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
	"github.com/lumera-app/lumera/pkg/registry"
	"github.com/lumera-app/lumera/pkg/waitqueue"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// Dispatcher executes a branch's action list strictly in order. Action N+1
// does not start until action N's outcome is recorded. A failed action never
// aborts its siblings: every action is attempted and the record reports
// partial success.
type Dispatcher struct {
	registry   *registry.Registry
	executions persistence.ExecutionRepository
	waits      waitqueue.WaitQueue
	publisher  eventbus.EventPublisher
	logger     *slog.Logger

	maxAttempts int
	backoffBase time.Duration
	sleep       func(time.Duration)
	now         func() time.Time
}

func NewDispatcher(
	reg *registry.Registry,
	executions persistence.ExecutionRepository,
	waits waitqueue.WaitQueue,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:    reg,
		executions:  executions,
		waits:       waits,
		publisher:   publisher,
		logger:      logger.With("module", "dispatcher"),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		sleep:       time.Sleep,
		now:         time.Now,
	}
}

// WithRetryPolicy overrides the per-action attempt limit and backoff base.
func (d *Dispatcher) WithRetryPolicy(maxAttempts int, backoffBase time.Duration) *Dispatcher {
	if maxAttempts > 0 {
		d.maxAttempts = maxAttempts
	}

	d.backoffBase = backoffBase

	return d
}

// Dispatch runs actions[startIndex:] for the record's firing. It returns
// suspended=true when a wait action scheduled a durable resumption; the
// record is then in the waiting state with its resume cursor persisted.
// The returned error covers persistence faults only, never action failures.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	workflow *models.Workflow,
	client *models.Client,
	record *models.ExecutionRecord,
	actions []models.Action,
	startIndex int,
) (bool, error) {
	logger := d.logger.With(
		"workflow_id", workflow.ID,
		"execution_id", record.ID,
		"client_id", client.ID,
	)

	firing := models.FiringContext{
		ExecutionID:  record.ID,
		WorkflowID:   workflow.ID,
		WorkflowName: workflow.Name,
		BranchID:     record.MatchedBranchID,
		TriggerData:  record.TriggerData,
	}

	for i := startIndex; i < len(actions); i++ {
		action := actions[i]

		if action.Type == models.ActionWait {
			suspendedAt, err := d.scheduleWait(ctx, record, action, i)
			if err != nil {
				return false, err
			}

			if suspendedAt {
				logger.Info("Firing suspended on wait action",
					"action_id", action.ID,
					"resume_index", i+1)

				return true, nil
			}

			// zero delay, fall through to the next action
			continue
		}

		result := d.runAction(ctx, action, client, firing, logger)
		record.RecordAction(result)
		record.NextActionIndex = i + 1

		if err := d.executions.Update(ctx, record); err != nil {
			return false, err
		}

		if result.Status == models.ActionStatusFailed {
			d.publish(ctx, record.WorkflowID, events.ActionFailed{
				BaseEvent:   d.baseEvent(events.ActionFailedEvent, record.WorkflowID),
				ExecutionID: record.ID,
				ActionID:    action.ID,
				ActionType:  string(action.Type),
				Attempts:    result.Attempts,
				Error:       result.Error,
			})
		}
	}

	return false, nil
}

// runAction attempts one action with bounded exponential backoff. Exhausting
// the attempt limit marks this single action failed without touching its
// siblings.
func (d *Dispatcher) runAction(
	ctx context.Context,
	action models.Action,
	client *models.Client,
	firing models.FiringContext,
	logger *slog.Logger,
) models.ActionResult {
	result := models.ActionResult{
		ActionID:   action.ID,
		ActionType: action.Type,
	}

	deliverer, err := d.registry.CreateDeliverer(string(action.Type), action.Config)
	if err != nil {
		result.Status = models.ActionStatusFailed
		result.Attempts = 0
		result.Timestamp = d.now()
		result.Error = err.Error()

		logger.Error("No deliverer for action", "action_type", action.Type, "error", err)

		return result
	}

	actionLogger := logger.With("action_id", action.ID, "action_type", action.Type)

	var lastErr error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := d.backoffBase << (attempt - 2)
			actionLogger.Info("Retrying action", "attempt", attempt, "backoff", backoff)
			d.sleep(backoff)
		}

		result.Attempts = attempt

		_, err := deliverer.Deliver(ctx, action, client, firing, actionLogger)
		if err == nil {
			result.Status = models.ActionStatusSuccess
			result.Timestamp = d.now()

			return result
		}

		lastErr = err
		actionLogger.Warn("Action attempt failed", "attempt", attempt, "error", err)
	}

	result.Status = models.ActionStatusFailed
	result.Timestamp = d.now()
	result.Error = lastErr.Error()

	return result
}

// scheduleWait records the wait action as settled and persists a resume
// point, so the pending wait survives a process restart. A wait with no
// delay reports suspended=false and the dispatch continues inline.
func (d *Dispatcher) scheduleWait(ctx context.Context, record *models.ExecutionRecord, action models.Action, index int) (bool, error) {
	record.RecordAction(models.ActionResult{
		ActionID:   action.ID,
		ActionType: models.ActionWait,
		Status:     models.ActionStatusSuccess,
		Attempts:   1,
		Timestamp:  d.now(),
	})

	delay := time.Duration(action.DelayMS()) * time.Millisecond
	if delay <= 0 {
		record.NextActionIndex = index + 1

		return false, d.executions.Update(ctx, record)
	}

	resumeAt := d.now().Add(delay)
	record.NextActionIndex = index + 1
	record.State = models.FiringWaiting

	if err := d.executions.Update(ctx, record); err != nil {
		return false, err
	}

	err := d.waits.Push(ctx, waitqueue.ResumePoint{
		ExecutionID: record.ID,
		WorkflowID:  record.WorkflowID,
		ClientID:    record.ClientID,
		ActionIndex: index + 1,
		DueAt:       resumeAt,
	})
	if err != nil {
		return false, err
	}

	d.publish(ctx, record.WorkflowID, events.WaitScheduled{
		BaseEvent:   d.baseEvent(events.WaitScheduledEvent, record.WorkflowID),
		ExecutionID: record.ID,
		ActionIndex: index + 1,
		ResumeAt:    resumeAt,
	})

	return true, nil
}

func (d *Dispatcher) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  d.now(),
		WorkflowID: workflowID,
	}
}

func (d *Dispatcher) publish(ctx context.Context, key string, event eventbus.Event) {
	if d.publisher == nil {
		return
	}

	if err := d.publisher.Publish(ctx, key, event); err != nil {
		d.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
