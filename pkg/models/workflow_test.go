package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conditionedBranch(id string, order int) Branch {
	return Branch{
		ID:         id,
		GroupLogic: LogicAnd,
		ConditionGroups: []ConditionGroup{{
			Logic: LogicAnd,
			Conditions: []Condition{{
				Field:    FieldClientType,
				Operator: OperatorEquals,
				Value:    StringValue("vip"),
			}},
		}},
		Order: order,
	}
}

func TestOrderedBranches(t *testing.T) {
	w := &Workflow{
		Branches: []Branch{
			conditionedBranch("c", 3),
			conditionedBranch("a", 1),
			conditionedBranch("b", 2),
		},
	}

	ordered := w.OrderedBranches()

	require.Len(t, ordered, 3)
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "b", ordered[1].ID)
	assert.Equal(t, "c", ordered[2].ID)

	// The stored slice is untouched.
	assert.Equal(t, "c", w.Branches[0].ID)
}

func TestWorkflowValidate(t *testing.T) {
	t.Run("valid workflow", func(t *testing.T) {
		w := &Workflow{
			Branches: []Branch{
				conditionedBranch("a", 1),
				conditionedBranch("b", 2),
			},
		}

		assert.NoError(t, w.Validate())
	})

	t.Run("conditionless branch allowed in last position", func(t *testing.T) {
		w := &Workflow{
			Branches: []Branch{
				conditionedBranch("a", 1),
				{ID: "catch-all", GroupLogic: LogicAnd, Order: 2},
			},
		}

		assert.NoError(t, w.Validate())
	})

	t.Run("conditionless branch rejected elsewhere", func(t *testing.T) {
		w := &Workflow{
			Branches: []Branch{
				{ID: "catch-all", GroupLogic: LogicAnd, Order: 1},
				conditionedBranch("a", 2),
			},
		}

		assert.ErrorIs(t, w.Validate(), ErrConditionlessBranch)
	})

	t.Run("duplicate branch id rejected", func(t *testing.T) {
		w := &Workflow{
			Branches: []Branch{
				conditionedBranch("a", 1),
				conditionedBranch("a", 2),
			},
		}

		assert.ErrorIs(t, w.Validate(), ErrDuplicateBranchID)
	})

	t.Run("invalid group logic rejected", func(t *testing.T) {
		b := conditionedBranch("a", 1)
		b.GroupLogic = "XOR"
		w := &Workflow{Branches: []Branch{b}}

		assert.Error(t, w.Validate())
	})

	t.Run("invalid condition rejected", func(t *testing.T) {
		b := conditionedBranch("a", 1)
		b.ConditionGroups[0].Conditions[0].Field = "shoeSize"
		w := &Workflow{Branches: []Branch{b}}

		assert.ErrorIs(t, w.Validate(), ErrUnknownField)
	})
}

func TestBranchHasConditions(t *testing.T) {
	assert.True(t, conditionedBranch("a", 1).HasConditions())
	assert.False(t, Branch{ID: "b"}.HasConditions())
	assert.False(t, Branch{
		ID:              "c",
		ConditionGroups: []ConditionGroup{{Logic: LogicAnd}},
	}.HasConditions())
}

func TestActionDelayMS(t *testing.T) {
	assert.Equal(t, int64(5000), Action{Config: map[string]any{"delay_ms": float64(5000)}}.DelayMS())
	assert.Equal(t, int64(5000), Action{Config: map[string]any{"delay_ms": 5000}}.DelayMS())
	assert.Equal(t, int64(0), Action{Config: map[string]any{}}.DelayMS())
	assert.Equal(t, int64(0), Action{Config: map[string]any{"delay_ms": "soon"}}.DelayMS())
}

func TestExecutionRecordSealed(t *testing.T) {
	assert.False(t, (&ExecutionRecord{State: FiringPending}).Sealed())
	assert.False(t, (&ExecutionRecord{State: FiringWaiting}).Sealed())
	assert.True(t, (&ExecutionRecord{State: FiringCompleted}).Sealed())
	assert.True(t, (&ExecutionRecord{State: FiringFailed}).Sealed())
}

func TestFailureCountByType(t *testing.T) {
	record := &ExecutionRecord{
		ActionResults: []ActionResult{
			{ActionType: ActionMessage, Status: ActionStatusFailed},
			{ActionType: ActionMessage, Status: ActionStatusFailed},
			{ActionType: ActionTag, Status: ActionStatusSuccess},
			{ActionType: ActionEmail, Status: ActionStatusFailed},
		},
	}

	counts := record.FailureCountByType()

	assert.Equal(t, 2, counts[ActionMessage])
	assert.Equal(t, 1, counts[ActionEmail])
	assert.NotContains(t, counts, ActionTag)
}
