package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
)

func TestPublishWorkflow(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	created, err := workflows.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	result, err := publishing.PublishWorkflow(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusPublished, result.Workflow.Status)
	require.NotNil(t, result.Workflow.PublishedAt)
	assert.Empty(t, result.Warnings)

	published, err := publishing.GetPublishedWorkflow(ctx, created.WorkflowGroupID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, published.ID)
}

func TestPublishWorkflow_OnlyDrafts(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	created, err := workflows.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, created.ID)
	require.NoError(t, err)

	// Publishing the already-published version again is a conflict.
	_, err = publishing.PublishWorkflow(ctx, created.ID)

	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestPublishWorkflow_ReplacesPreviousVersion(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	v1, err := workflows.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, v1.ID)
	require.NoError(t, err)

	v2, err := publishing.CreateDraftFromPublished(ctx, v1.WorkflowGroupID)
	require.NoError(t, err)
	require.NotEqual(t, v1.ID, v2.ID)

	_, err = publishing.PublishWorkflow(ctx, v2.ID)
	require.NoError(t, err)

	published, err := publishing.GetPublishedWorkflow(ctx, v1.WorkflowGroupID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, published.ID)

	// The previous version is history now.
	old, err := persist.WorkflowRepository().GetByID(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusUnpublished, old.Status)
}

func TestPublishWorkflow_ZeroActionBranchWarns(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	workflow := draftWorkflow("Reactivation")
	workflow.Branches[0].Actions = nil

	created, err := workflows.Create(ctx, workflow)
	require.NoError(t, err)

	result, err := publishing.PublishWorkflow(ctx, created.ID)

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no actions")
}

func TestPublishWorkflow_RejectsInvalidActionConfig(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	workflow := draftWorkflow("Reactivation")
	// message without its required channel/content config
	workflow.Branches[0].Actions = []models.Action{{ID: "a1", Type: models.ActionMessage, Config: map[string]any{}}}

	created, err := workflows.Create(ctx, workflow)
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, created.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config invalid")
}

func TestPublishWorkflow_RejectsEmptyDefinition(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	workflow := draftWorkflow("Reactivation")
	workflow.Branches = nil

	created, err := workflows.Create(ctx, workflow)
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, created.ID)

	assert.ErrorIs(t, err, ErrBranchesRequired)
}

func TestPublishWorkflow_ScheduleTriggerSyncsPollerEntry(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	workflow := draftWorkflow("Birthday Campaign")
	workflow.Trigger = models.WorkflowTrigger{
		Type:   models.TriggerSchedule,
		Config: map[string]any{"cron": "0 9 * * *", "event": "birthday"},
	}

	created, err := workflows.Create(ctx, workflow)
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, created.ID)
	require.NoError(t, err)

	schedules, err := persist.ScheduleRepository().List(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "sched-"+created.WorkflowGroupID, schedules[0].ID)
	assert.Equal(t, created.WorkflowGroupID, schedules[0].WorkflowID)
	assert.Equal(t, "birthday", schedules[0].Event)
	assert.True(t, schedules[0].Active)
}

func TestPublishWorkflow_DroppingScheduleTriggerRemovesEntry(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	scheduled := draftWorkflow("Birthday Campaign")
	scheduled.Trigger = models.WorkflowTrigger{
		Type:   models.TriggerSchedule,
		Config: map[string]any{"cron": "0 9 * * *", "event": "birthday"},
	}

	v1, err := workflows.Create(ctx, scheduled)
	require.NoError(t, err)
	_, err = publishing.PublishWorkflow(ctx, v1.ID)
	require.NoError(t, err)

	v2, err := publishing.CreateDraftFromPublished(ctx, v1.WorkflowGroupID)
	require.NoError(t, err)

	v2.Trigger = models.WorkflowTrigger{Type: models.TriggerManual}
	_, err = workflows.Update(ctx, v2.ID, v2)
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, v2.ID)
	require.NoError(t, err)

	schedules, err := persist.ScheduleRepository().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestPublishWorkflow_ScheduleTriggerNeedsCron(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	workflow := draftWorkflow("Birthday Campaign")
	workflow.Trigger = models.WorkflowTrigger{Type: models.TriggerSchedule}

	created, err := workflows.Create(ctx, workflow)
	require.NoError(t, err)

	_, err = publishing.PublishWorkflow(ctx, created.ID)

	assert.ErrorIs(t, err, ErrInvalidTrigger)
}

func TestCreateDraftFromPublished_ReturnsExistingDraft(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	publishing := NewPublishing(persist)
	ctx := context.Background()

	v1, err := workflows.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)
	_, err = publishing.PublishWorkflow(ctx, v1.ID)
	require.NoError(t, err)

	first, err := publishing.CreateDraftFromPublished(ctx, v1.WorkflowGroupID)
	require.NoError(t, err)

	second, err := publishing.CreateDraftFromPublished(ctx, v1.WorkflowGroupID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestCreateDraftFromPublished_NoPublishedVersion(t *testing.T) {
	persist := newTestPersistence(t)
	publishing := NewPublishing(persist)

	_, err := publishing.CreateDraftFromPublished(context.Background(), "ghost-group")

	assert.ErrorIs(t, err, persistence.ErrPublishedWorkflowNotFound)
}
