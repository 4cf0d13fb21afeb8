package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumera-app/lumera/pkg/directory"
	"github.com/lumera-app/lumera/pkg/eventbus"
	"github.com/lumera-app/lumera/pkg/events"
	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/otelhelper"
	"github.com/lumera-app/lumera/pkg/persistence"
)

var (
	// ErrWorkflowDisabled is returned when a new firing targets a disabled
	// workflow. In-flight firings are unaffected.
	ErrWorkflowDisabled = errors.New("workflow is disabled")

	// ErrWorkflowNotExecutable is returned when the targeted version is not
	// the published snapshot.
	ErrWorkflowNotExecutable = errors.New("workflow version is not published")
)

// Runner orchestrates one firing: trigger intake, branch selection, action
// dispatch and outcome recording. One subject, one workflow, one
// deterministic walk; concurrent firings each own their record.
type Runner struct {
	persistence persistence.Persistence
	directory   directory.Directory
	selector    *Selector
	dispatcher  *Dispatcher
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
	workerID    string
	now         func() time.Time
}

func NewRunner(
	persist persistence.Persistence,
	dir directory.Directory,
	selector *Selector,
	dispatcher *Dispatcher,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
	workerID string,
) *Runner {
	return &Runner{
		persistence: persist,
		directory:   dir,
		selector:    selector,
		dispatcher:  dispatcher,
		publisher:   publisher,
		tracer:      otel.Tracer("lumera.engine"),
		logger:      logger.With("module", "runner"),
		workerID:    workerID,
		now:         time.Now,
	}
}

// Run executes one firing of the workflow for one client. Action failures
// are recorded outcomes inside a Completed run; only runner-level faults
// (unresolvable client, unusable workflow definition) produce a Failed
// record and a non-nil error.
func (r *Runner) Run(ctx context.Context, workflowID, clientID string, triggerData map[string]any) (*models.ExecutionRecord, error) {
	ctx, span := r.tracer.Start(ctx, "workflow.firing", trace.WithAttributes(
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.ClientIDKey, clientID),
	))
	defer span.End()

	logger := r.logger.With("workflow_id", workflowID, "client_id", clientID)

	workflow, err := r.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	if workflow.Status != models.WorkflowStatusPublished {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotExecutable, workflowID)
	}

	// Disabled workflows are checked before Evaluating; no record is created.
	if !workflow.Enabled {
		logger.Info("Workflow disabled, skipping firing")

		return nil, fmt.Errorf("%w: %s", ErrWorkflowDisabled, workflowID)
	}

	record := &models.ExecutionRecord{
		ID:          "exec-" + uuid.New().String(),
		WorkflowID:  workflowID,
		ClientID:    clientID,
		TriggeredAt: r.now(),
		State:       models.FiringPending,
		TriggerData: triggerData,
	}

	if err := r.persistence.ExecutionRepository().Append(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	logger = logger.With("execution_id", record.ID)
	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, record.ID))

	r.publish(ctx, workflowID, events.FiringStarted{
		BaseEvent:   r.baseEvent(events.FiringStartedEvent, workflowID),
		ExecutionID: record.ID,
		ClientID:    clientID,
	})

	client, err := r.directory.GetByID(ctx, clientID)
	if err != nil {
		return record, r.fail(ctx, record, fmt.Errorf("failed to resolve client %s: %w", clientID, err))
	}

	// Evaluating: the match is recorded immediately, independent of whether
	// dispatch later succeeds. Matching and dispatching are separate facts.
	record.State = models.FiringEvaluating
	if err := r.persistence.ExecutionRepository().Update(ctx, record); err != nil {
		return record, r.fail(ctx, record, err)
	}

	branch, matched := r.selector.SelectBranch(workflow, client)

	var actions []models.Action

	switch {
	case matched:
		record.MatchedBranchID = branch.ID
		actions = branch.Actions
	case len(workflow.ElseActions) > 0:
		record.MatchedBranchID = models.MatchedBranchElse
		actions = workflow.ElseActions
	default:
		record.MatchedBranchID = models.MatchedBranchNone
	}

	logger.Info("Branch selected", "matched_branch_id", record.MatchedBranchID, "actions", len(actions))
	span.SetAttributes(attribute.String(otelhelper.BranchIDKey, record.MatchedBranchID))

	r.publish(ctx, workflowID, events.BranchMatched{
		BaseEvent:       r.baseEvent(events.BranchMatchedEvent, workflowID),
		ExecutionID:     record.ID,
		ClientID:        clientID,
		MatchedBranchID: record.MatchedBranchID,
	})

	record.State = models.FiringDispatching
	if err := r.persistence.ExecutionRepository().Update(ctx, record); err != nil {
		return record, r.fail(ctx, record, err)
	}

	// A matched branch with zero actions completes as a recorded no-op
	// rather than an error; the builder warns about it at publish time.
	suspended, err := r.dispatcher.Dispatch(ctx, workflow, client, record, actions, 0)
	if err != nil {
		return record, r.fail(ctx, record, err)
	}

	if suspended {
		return record, nil
	}

	return record, r.seal(ctx, record, logger)
}

// Resume continues a firing suspended on a wait action, starting at the
// persisted action index. Re-delivered resume events are harmless: a sealed
// record is returned as-is.
func (r *Runner) Resume(ctx context.Context, executionID string, actionIndex int) (*models.ExecutionRecord, error) {
	record, err := r.persistence.ExecutionRepository().GetByID(ctx, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch execution %s: %w", executionID, err)
	}

	if record.Sealed() {
		return record, nil
	}

	ctx, span := r.tracer.Start(ctx, "workflow.firing.resume", trace.WithAttributes(
		attribute.String(otelhelper.ExecutionIDKey, record.ID),
		attribute.String(otelhelper.WorkflowIDKey, record.WorkflowID),
	))
	defer span.End()

	logger := r.logger.With("execution_id", record.ID, "workflow_id", record.WorkflowID)

	workflow, err := r.persistence.WorkflowRepository().GetByID(ctx, record.WorkflowID)
	if err != nil {
		return record, r.fail(ctx, record, fmt.Errorf("failed to fetch workflow %s: %w", record.WorkflowID, err))
	}

	client, err := r.directory.GetByID(ctx, record.ClientID)
	if err != nil {
		return record, r.fail(ctx, record, fmt.Errorf("failed to resolve client %s: %w", record.ClientID, err))
	}

	actions, err := actionsForRecord(workflow, record)
	if err != nil {
		return record, r.fail(ctx, record, err)
	}

	record.State = models.FiringDispatching
	if err := r.persistence.ExecutionRepository().Update(ctx, record); err != nil {
		return record, r.fail(ctx, record, err)
	}

	suspended, err := r.dispatcher.Dispatch(ctx, workflow, client, record, actions, actionIndex)
	if err != nil {
		return record, r.fail(ctx, record, err)
	}

	if suspended {
		return record, nil
	}

	return record, r.seal(ctx, record, logger)
}

// actionsForRecord resolves the action list the record was dispatching when
// it suspended. The workflow version is immutable, so the list is stable
// across the suspension.
func actionsForRecord(workflow *models.Workflow, record *models.ExecutionRecord) ([]models.Action, error) {
	switch record.MatchedBranchID {
	case models.MatchedBranchElse:
		return workflow.ElseActions, nil
	case models.MatchedBranchNone, "":
		return nil, nil
	}

	for _, b := range workflow.Branches {
		if b.ID == record.MatchedBranchID {
			return b.Actions, nil
		}
	}

	return nil, fmt.Errorf("branch %s not found in workflow %s", record.MatchedBranchID, workflow.ID)
}

func (r *Runner) seal(ctx context.Context, record *models.ExecutionRecord, logger *slog.Logger) error {
	completedAt := r.now()
	record.State = models.FiringCompleted
	record.CompletedAt = &completedAt

	if err := r.persistence.ExecutionRepository().Update(ctx, record); err != nil {
		return fmt.Errorf("failed to seal execution record: %w", err)
	}

	failed := 0

	for _, res := range record.ActionResults {
		if res.Status == models.ActionStatusFailed {
			failed++
		}
	}

	logger.Info("Firing completed",
		"matched_branch_id", record.MatchedBranchID,
		"action_results", len(record.ActionResults),
		"failed_actions", failed)

	r.publish(ctx, record.WorkflowID, events.FiringCompleted{
		BaseEvent:       r.baseEvent(events.FiringCompletedEvent, record.WorkflowID),
		ExecutionID:     record.ID,
		ClientID:        record.ClientID,
		MatchedBranchID: record.MatchedBranchID,
		FailedActions:   failed,
		Duration:        completedAt.Sub(record.TriggeredAt),
	})

	return nil
}

// fail seals the record as Failed. Reserved for runner-level faults; action
// failures never land here.
func (r *Runner) fail(ctx context.Context, record *models.ExecutionRecord, cause error) error {
	otelhelper.SetError(trace.SpanFromContext(ctx), cause,
		attribute.String(otelhelper.ExecutionIDKey, record.ID))

	completedAt := r.now()
	record.State = models.FiringFailed
	record.Error = cause.Error()
	record.CompletedAt = &completedAt

	if err := r.persistence.ExecutionRepository().Update(ctx, record); err != nil {
		r.logger.Error("Failed to persist failed execution record",
			"execution_id", record.ID, "error", err)
	}

	r.publish(ctx, record.WorkflowID, events.FiringFailed{
		BaseEvent:   r.baseEvent(events.FiringFailedEvent, record.WorkflowID),
		ExecutionID: record.ID,
		ClientID:    record.ClientID,
		Error:       cause.Error(),
	})

	return cause
}

func (r *Runner) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  r.now(),
		WorkflowID: workflowID,
		WorkerID:   r.workerID,
	}
}

func (r *Runner) publish(ctx context.Context, key string, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, key, event); err != nil {
		r.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
