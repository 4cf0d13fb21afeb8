package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
)

func TestWorkflowStats(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	stats := NewStats(persist)
	ctx := context.Background()

	workflow := draftWorkflow("Reactivation")
	workflow.Branches = append(workflow.Branches, models.Branch{
		ID:         "b2",
		Name:       "Dormant",
		GroupLogic: models.LogicAnd,
		ConditionGroups: []models.ConditionGroup{{
			Logic: models.LogicAnd,
			Conditions: []models.Condition{{
				Field:    models.FieldLastVisit,
				Operator: models.OperatorGreaterThan,
				Value:    models.NumberValue(60),
			}},
		}},
		Order: 2,
	})

	created, err := workflows.Create(ctx, workflow)
	require.NoError(t, err)

	records := []*models.ExecutionRecord{
		{ID: "e1", WorkflowID: created.ID, MatchedBranchID: "b1", State: models.FiringCompleted},
		{ID: "e2", WorkflowID: created.ID, MatchedBranchID: "b1", State: models.FiringCompleted},
		{ID: "e3", WorkflowID: created.ID, MatchedBranchID: models.MatchedBranchNone, State: models.FiringCompleted,
			ActionResults: []models.ActionResult{
				{ActionType: models.ActionMessage, Status: models.ActionStatusFailed},
			}},
	}
	for _, r := range records {
		require.NoError(t, persist.ExecutionRepository().Append(ctx, r))
	}

	result, err := stats.WorkflowStats(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalFirings)

	// Defined branches first in priority order, zero counts included, then
	// the sentinel outcomes.
	require.Len(t, result.Branches, 3)
	assert.Equal(t, "b1", result.Branches[0].BranchID)
	assert.Equal(t, 2, result.Branches[0].Firings)
	assert.Equal(t, "b2", result.Branches[1].BranchID)
	assert.Equal(t, 0, result.Branches[1].Firings)
	assert.Equal(t, models.MatchedBranchNone, result.Branches[2].BranchID)
	assert.Equal(t, 1, result.Branches[2].Firings)

	assert.Equal(t, 1, result.ActionFailures[models.ActionMessage])
}

func TestWorkflowStats_RemovedBranchStillCounted(t *testing.T) {
	persist := newTestPersistence(t)
	workflows := NewWorkflow(persist)
	stats := NewStats(persist)
	ctx := context.Background()

	created, err := workflows.Create(ctx, draftWorkflow("Reactivation"))
	require.NoError(t, err)

	record := &models.ExecutionRecord{
		ID: "e1", WorkflowID: created.ID, MatchedBranchID: "gone-branch", State: models.FiringCompleted,
	}
	require.NoError(t, persist.ExecutionRepository().Append(ctx, record))

	result, err := stats.WorkflowStats(ctx, created.ID)

	require.NoError(t, err)
	require.Len(t, result.Branches, 2)
	assert.Equal(t, "gone-branch", result.Branches[1].BranchID)
	assert.Equal(t, 1, result.Branches[1].Firings)
}

func TestWorkflowStats_UnknownWorkflow(t *testing.T) {
	stats := NewStats(newTestPersistence(t))

	_, err := stats.WorkflowStats(context.Background(), "nope")

	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestRecentExecutionsAndExecution(t *testing.T) {
	persist := newTestPersistence(t)
	stats := NewStats(persist)
	ctx := context.Background()

	record := &models.ExecutionRecord{ID: "e1", WorkflowID: "wf-1", ClientID: "c1", State: models.FiringCompleted}
	require.NoError(t, persist.ExecutionRepository().Append(ctx, record))

	listed, err := stats.RecentExecutions(ctx, persistence.ExecutionQuery{WorkflowID: "wf-1"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	fetched, err := stats.Execution(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "c1", fetched.ClientID)

	_, err = stats.Execution(ctx, "ghost")
	assert.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}
