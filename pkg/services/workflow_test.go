package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumera-app/lumera/pkg/mocks"
	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
	"github.com/lumera-app/lumera/pkg/persistence/file"
)

func newTestPersistence(t *testing.T) persistence.Persistence {
	t.Helper()

	return file.NewPersistence(t.TempDir())
}

func draftWorkflow(name string) *models.Workflow {
	return &models.Workflow{
		Name:    name,
		Status:  models.WorkflowStatusDraft,
		Trigger: models.WorkflowTrigger{Type: models.TriggerManual},
		Branches: []models.Branch{{
			ID:         "b1",
			Name:       "VIP",
			GroupLogic: models.LogicAnd,
			ConditionGroups: []models.ConditionGroup{{
				Logic: models.LogicAnd,
				Conditions: []models.Condition{{
					Field:    models.FieldClientType,
					Operator: models.OperatorEquals,
					Value:    models.StringValue("vip"),
				}},
			}},
			Actions: []models.Action{{
				ID:   "a1",
				Type: models.ActionMessage,
				Config: map[string]any{
					"channel": "whatsapp",
					"content": "Hi {clientFirstName}!",
				},
			}},
		}},
		Enabled: true,
	}
}

func TestWorkflowCreate(t *testing.T) {
	service := NewWorkflow(newTestPersistence(t))

	created, err := service.Create(context.Background(), draftWorkflow("Reactivation"))

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.WorkflowGroupID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestWorkflowCreate_NilWorkflow(t *testing.T) {
	service := NewWorkflow(newTestPersistence(t))

	_, err := service.Create(context.Background(), nil)

	assert.ErrorIs(t, err, ErrWorkflowNil)
}

func TestWorkflowCreate_ShortNameRejected(t *testing.T) {
	service := NewWorkflow(newTestPersistence(t))

	_, err := service.Create(context.Background(), draftWorkflow("ab"))

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflowCreate_InvalidBranchOrderingRejected(t *testing.T) {
	service := NewWorkflow(newTestPersistence(t))

	workflow := draftWorkflow("Reactivation")
	workflow.Branches = []models.Branch{
		{ID: "catch-all", GroupLogic: models.LogicAnd, Order: 1},
		workflow.Branches[0],
	}
	workflow.Branches[1].Order = 2

	_, err := service.Create(context.Background(), workflow)

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflowUpdate_DraftOnly(t *testing.T) {
	persist := newTestPersistence(t)
	service := NewWorkflow(persist)
	ctx := context.Background()

	created, err := service.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	updated := draftWorkflow("Reactivation v2")
	result, err := service.Update(ctx, created.ID, updated)

	require.NoError(t, err)
	assert.Equal(t, created.ID, result.ID)
	assert.Equal(t, created.WorkflowGroupID, result.WorkflowGroupID)
	assert.Equal(t, "Reactivation v2", result.Name)
}

func TestWorkflowUpdate_PublishedIsImmutable(t *testing.T) {
	persist := newTestPersistence(t)
	service := NewWorkflow(persist)
	ctx := context.Background()

	created, err := service.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	created.Status = models.WorkflowStatusPublished
	require.NoError(t, persist.WorkflowRepository().Save(ctx, created))

	_, err = service.Update(ctx, created.ID, draftWorkflow("Nope"))

	require.ErrorIs(t, err, ErrCannotModifyPublished)
	assert.True(t, IsConflictError(err))
}

func TestWorkflowUpdate_UnpublishedIsImmutable(t *testing.T) {
	persist := newTestPersistence(t)
	service := NewWorkflow(persist)
	ctx := context.Background()

	created, err := service.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	created.Status = models.WorkflowStatusUnpublished
	require.NoError(t, persist.WorkflowRepository().Save(ctx, created))

	_, err = service.Update(ctx, created.ID, draftWorkflow("Nope"))

	assert.ErrorIs(t, err, ErrCannotModifyUnpublished)
}

func TestWorkflowSetEnabled(t *testing.T) {
	persist := newTestPersistence(t)
	service := NewWorkflow(persist)
	ctx := context.Background()

	created, err := service.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	disabled, err := service.SetEnabled(ctx, created.ID, false)

	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	stored, err := persist.WorkflowRepository().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Enabled)
}

func TestWorkflowSetEnabled_AnyStatus(t *testing.T) {
	persist := newTestPersistence(t)
	service := NewWorkflow(persist)
	ctx := context.Background()

	created, err := service.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	created.Status = models.WorkflowStatusPublished
	require.NoError(t, persist.WorkflowRepository().Save(ctx, created))

	disabled, err := service.SetEnabled(ctx, created.ID, false)

	require.NoError(t, err)
	assert.False(t, disabled.Enabled)
	assert.Equal(t, models.WorkflowStatusPublished, disabled.Status)
}

func TestWorkflowDelete(t *testing.T) {
	persist := newTestPersistence(t)
	service := NewWorkflow(persist)
	ctx := context.Background()

	created, err := service.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.FetchByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflowDelete_Missing(t *testing.T) {
	service := NewWorkflow(newTestPersistence(t))

	err := service.Delete(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflowHealthCheck(t *testing.T) {
	service := NewWorkflow(newTestPersistence(t))

	msg, ok := service.HealthCheck(context.Background())

	assert.True(t, ok)
	assert.NotEmpty(t, msg)
}

func TestWorkflowHealthCheck_Unhealthy(t *testing.T) {
	persist := mocks.NewMockPersistence()
	persist.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	msg, ok := NewWorkflow(persist).HealthCheck(context.Background())

	assert.False(t, ok)
	assert.Contains(t, msg, "connection refused")
}

func TestWorkflowList_PersistenceFailure(t *testing.T) {
	persist := mocks.NewMockPersistence()
	persist.Workflows.On("List", mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewWorkflow(persist).List(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestWorkflowCreate_SaveFailure(t *testing.T) {
	persist := mocks.NewMockPersistence()
	persist.Workflows.On("Save", mock.Anything, mock.AnythingOfType("*models.Workflow")).
		Return(errors.New("disk full"))

	_, err := NewWorkflow(persist).Create(context.Background(), draftWorkflow("Reactivation"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
