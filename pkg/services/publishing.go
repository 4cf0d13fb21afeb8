package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
	"github.com/lumera-app/lumera/pkg/registry"
)

// Publishing handles workflow publishing. Publishing snapshots a draft as the
// group's executable version: the previous published version becomes
// unpublished history, and schedule triggers get their poller entry synced.
type Publishing struct {
	persistence persistence.Persistence
}

// NewPublishing creates a new workflow publishing service.
func NewPublishing(persist persistence.Persistence) *Publishing {
	return &Publishing{
		persistence: persist,
	}
}

// PublishResult carries the published version plus non-blocking authoring
// warnings (a matched branch with zero actions still completes, it just does
// nothing).
type PublishResult struct {
	Workflow *models.Workflow `json:"workflow"`
	Warnings []string         `json:"warnings,omitempty"`
}

// PublishWorkflow validates a draft and promotes it to the group's published
// version.
func (p *Publishing) PublishWorkflow(ctx context.Context, workflowID string) (*PublishResult, error) {
	repo := p.persistence.WorkflowRepository()

	workflow, err := repo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow.Status != models.WorkflowStatusDraft {
		return nil, ErrNotDraft
	}

	warnings, err := p.validateForPublishing(workflow)
	if err != nil {
		return nil, fmt.Errorf("workflow validation failed: %w", err)
	}

	// Unpublish the current version first. Between the two saves a group can
	// briefly have no published version; triggers landing in that window are
	// rejected, never run against a half-promoted definition.
	current, err := repo.GetPublishedByGroup(ctx, workflow.WorkflowGroupID)
	if err != nil && !errors.Is(err, persistence.ErrPublishedWorkflowNotFound) {
		return nil, fmt.Errorf("failed to get published workflow: %w", err)
	}

	if current != nil && current.ID != workflow.ID {
		current.Status = models.WorkflowStatusUnpublished
		if err := repo.Save(ctx, current); err != nil {
			return nil, fmt.Errorf("failed to unpublish workflow %s: %w", current.ID, err)
		}
	}

	now := time.Now().UTC()
	workflow.Status = models.WorkflowStatusPublished
	workflow.PublishedAt = &now

	if err := repo.Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to publish workflow: %w", err)
	}

	if err := p.syncSchedule(ctx, workflow, current); err != nil {
		return nil, fmt.Errorf("failed to sync schedule: %w", err)
	}

	return &PublishResult{Workflow: workflow, Warnings: warnings}, nil
}

// CreateDraftFromPublished creates an editable draft copy of the group's
// published version. If a draft already exists it is returned unchanged.
func (p *Publishing) CreateDraftFromPublished(ctx context.Context, workflowGroupID string) (*models.Workflow, error) {
	repo := p.persistence.WorkflowRepository()

	workflows, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	for _, existing := range workflows {
		if existing.WorkflowGroupID == workflowGroupID && existing.Status == models.WorkflowStatusDraft {
			return existing, nil
		}
	}

	published, err := repo.GetPublishedByGroup(ctx, workflowGroupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	draft := *published
	draft.ID = uuid.New().String()
	draft.Status = models.WorkflowStatusDraft
	draft.CreatedAt = now
	draft.UpdatedAt = now
	draft.PublishedAt = nil

	if err := repo.Save(ctx, &draft); err != nil {
		return nil, fmt.Errorf("failed to save draft workflow: %w", err)
	}

	return &draft, nil
}

// GetPublishedWorkflow returns the published version of a workflow group.
func (p *Publishing) GetPublishedWorkflow(ctx context.Context, workflowGroupID string) (*models.Workflow, error) {
	return p.persistence.WorkflowRepository().GetPublishedByGroup(ctx, workflowGroupID)
}

// validateForPublishing ensures a workflow is ready to be published: branch
// structure valid, every action config valid against its schema, schedule
// cron parseable. Returns warnings for suspicious but legal definitions.
func (p *Publishing) validateForPublishing(workflow *models.Workflow) ([]string, error) {
	if workflow.Name == "" {
		return nil, ErrWorkflowNameRequired
	}

	if len(workflow.Branches) == 0 && len(workflow.ElseActions) == 0 {
		return nil, ErrBranchesRequired
	}

	if err := workflow.Validate(); err != nil {
		return nil, err
	}

	var warnings []string

	for _, branch := range workflow.Branches {
		if len(branch.Actions) == 0 {
			warnings = append(warnings, fmt.Sprintf("branch %q has no actions; matching clients will complete without effect", branch.Name))
		}

		for _, action := range branch.Actions {
			if err := registry.ValidateActionConfig(action); err != nil {
				return nil, fmt.Errorf("branch %q: %w", branch.Name, err)
			}
		}
	}

	for _, action := range workflow.ElseActions {
		if err := registry.ValidateActionConfig(action); err != nil {
			return nil, fmt.Errorf("else actions: %w", err)
		}
	}

	if workflow.Trigger.Type == models.TriggerSchedule {
		expr, _ := workflow.Trigger.Config["cron"].(string)
		if expr == "" {
			return nil, fmt.Errorf("%w: schedule trigger requires a cron expression", ErrInvalidTrigger)
		}

		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(expr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
		}
	}

	return warnings, nil
}

// syncSchedule keeps the scheduler's poll table in step with the published
// version. Schedules are keyed by workflow group, so republishing replaces
// the entry in place; a published version without a schedule trigger removes
// it.
func (p *Publishing) syncSchedule(ctx context.Context, workflow, previous *models.Workflow) error {
	repo := p.persistence.ScheduleRepository()

	if workflow.Trigger.Type != models.TriggerSchedule {
		if previous != nil && previous.Trigger.Type == models.TriggerSchedule {
			return repo.Delete(ctx, scheduleID(workflow.WorkflowGroupID))
		}

		return nil
	}

	expr, _ := workflow.Trigger.Config["cron"].(string)
	event, _ := workflow.Trigger.Config["event"].(string)

	schedule, err := models.NewSchedule(scheduleID(workflow.WorkflowGroupID), workflow.WorkflowGroupID, expr, event)
	if err != nil {
		return err
	}

	return repo.Save(ctx, schedule)
}

func scheduleID(workflowGroupID string) string {
	return "sched-" + workflowGroupID
}
