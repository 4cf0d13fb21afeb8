package segment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumera-app/lumera/pkg/directory"
	"github.com/lumera-app/lumera/pkg/engine"
	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func vipDefinition() Definition {
	return Definition{
		Name:  "VIP clients",
		Logic: models.LogicAnd,
		Groups: []models.ConditionGroup{{
			Logic: models.LogicAnd,
			Conditions: []models.Condition{{
				Field:    models.FieldClientType,
				Operator: models.OperatorEquals,
				Value:    models.StringValue("vip"),
			}},
		}},
	}
}

func TestFilterSegment(t *testing.T) {
	dir := directory.NewMemoryDirectory(
		&models.Client{ID: "c1", ClientType: "vip"},
		&models.Client{ID: "c2", ClientType: "regular"},
		&models.Client{ID: "c3", ClientType: "vip"},
	)

	filter := NewFilter(engine.NewEvaluator(testLogger()), dir, testLogger())

	result, err := filter.FilterSegment(context.Background(), vipDefinition())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Clients, 2)

	for _, client := range result.Clients {
		assert.Equal(t, "vip", client.ClientType)
	}
}

func TestFilterSegment_EmptyDefinitionMatchesEveryone(t *testing.T) {
	dir := directory.NewMemoryDirectory(
		&models.Client{ID: "c1"},
		&models.Client{ID: "c2"},
	)

	filter := NewFilter(engine.NewEvaluator(testLogger()), dir, testLogger())

	result, err := filter.FilterSegment(context.Background(), Definition{Logic: models.LogicAnd})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
}

// A segment and a branch with the same groups must agree client by client:
// both run the same evaluator fold.
func TestMatches_AgreesWithBranchMatching(t *testing.T) {
	evaluator := engine.NewEvaluator(testLogger())
	selector := engine.NewSelector(evaluator, testLogger())
	filter := NewFilter(evaluator, directory.NewMemoryDirectory(), testLogger())

	def := vipDefinition()
	branch := models.Branch{
		ID:              "b1",
		GroupLogic:      def.Logic,
		ConditionGroups: def.Groups,
	}

	clients := []*models.Client{
		{ID: "c1", ClientType: "vip"},
		{ID: "c2", ClientType: "regular"},
		{ID: "c3"},
	}

	for _, client := range clients {
		assert.Equal(t,
			selector.MatchBranch(branch, client),
			filter.Matches(def, client),
			"client %s", client.ID)
	}
}

func TestFilterSegment_CompoundDefinition(t *testing.T) {
	big := testutil.CreateTestClient(testutil.WithClientType("vip"), testutil.WithTotalSpent(2000))
	dormant := testutil.CreateTestClient(testutil.WithTotalSpent(900), testutil.WithLastVisitDaysAgo(120))
	small := testutil.CreateTestClient(testutil.WithTotalSpent(50))

	dir := directory.NewMemoryDirectory(big, dormant, small)
	filter := NewFilter(engine.NewEvaluator(testLogger()), dir, testLogger())

	// vip OR spent over 500
	def := Definition{
		Name:  "High value",
		Logic: models.LogicOr,
		Groups: []models.ConditionGroup{
			{
				Logic:      models.LogicAnd,
				Conditions: []models.Condition{testutil.CreateTestCondition()},
			},
			{
				Logic: models.LogicAnd,
				Conditions: []models.Condition{testutil.CreateTestCondition(func(c *models.Condition) {
					c.Field = models.FieldTotalSpent
					c.Operator = models.OperatorGreaterThan
					c.Value = models.NumberValue(500)
				})},
			},
		},
	}

	result, err := filter.FilterSegment(context.Background(), def)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	matched := make(map[string]bool, result.Count)
	for _, client := range result.Clients {
		matched[client.ID] = true
	}

	assert.True(t, matched[big.ID])
	assert.True(t, matched[dormant.ID])
	assert.False(t, matched[small.ID])
}

func TestDefinitionValidate(t *testing.T) {
	require.NoError(t, vipDefinition().Validate())

	broken := Definition{
		Logic: models.LogicAnd,
		Groups: []models.ConditionGroup{{
			Logic: models.LogicAnd,
			Conditions: []models.Condition{{
				Field:    "shoeSize",
				Operator: models.OperatorEquals,
				Value:    models.NumberValue(42),
			}},
		}},
	}

	assert.Error(t, broken.Validate())
}
