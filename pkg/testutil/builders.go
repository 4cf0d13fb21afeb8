// Package testutil provides test data builders for workflows and clients.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumera-app/lumera/pkg/models"
)

// CreateTestClient creates a client with default values that can be overridden.
func CreateTestClient(overrides ...func(*models.Client)) *models.Client {
	lastVisit := time.Now().UTC().AddDate(0, 0, -10)
	client := &models.Client{
		ID:            uuid.New().String(),
		Name:          "Test Client",
		Email:         "client@example.com",
		Phone:         "+5511999990000",
		ClientType:    "regular",
		TotalSpent:    250,
		VisitCount:    5,
		LastVisitAt:   &lastVisit,
		LastService:   "haircut",
		Tags:          []string{"active"},
		LoyaltyPoints: 50,
	}

	for _, override := range overrides {
		override(client)
	}

	return client
}

// WithClientType sets the client type.
func WithClientType(clientType string) func(*models.Client) {
	return func(c *models.Client) {
		c.ClientType = clientType
	}
}

// WithTotalSpent sets the total spent amount.
func WithTotalSpent(total float64) func(*models.Client) {
	return func(c *models.Client) {
		c.TotalSpent = total
	}
}

// WithTags replaces the client's tag set.
func WithTags(tags ...string) func(*models.Client) {
	return func(c *models.Client) {
		c.Tags = tags
	}
}

// WithLastVisitDaysAgo sets the last visit relative to now.
func WithLastVisitDaysAgo(days int) func(*models.Client) {
	return func(c *models.Client) {
		t := time.Now().UTC().AddDate(0, 0, -days)
		c.LastVisitAt = &t
	}
}

// WithBirthday sets the client's birthday.
func WithBirthday(month time.Month, day int) func(*models.Client) {
	return func(c *models.Client) {
		t := time.Date(1990, month, day, 0, 0, 0, 0, time.UTC)
		c.Birthday = &t
	}
}

// CreateTestCondition creates a condition with default values that can be overridden.
func CreateTestCondition(overrides ...func(*models.Condition)) models.Condition {
	condition := models.Condition{
		ID:       uuid.New().String(),
		Field:    models.FieldClientType,
		Operator: models.OperatorEquals,
		Value:    models.StringValue("vip"),
	}

	for _, override := range overrides {
		override(&condition)
	}

	return condition
}

// CreateTestBranch creates a branch holding the given conditions in one AND group.
func CreateTestBranch(order int, actions []models.Action, conditions ...models.Condition) models.Branch {
	return models.Branch{
		ID:         uuid.New().String(),
		Name:       "Test Branch",
		GroupLogic: models.LogicAnd,
		ConditionGroups: []models.ConditionGroup{
			{
				ID:         uuid.New().String(),
				Logic:      models.LogicAnd,
				Conditions: conditions,
			},
		},
		Actions: actions,
		Order:   order,
	}
}

// CreateTestAction creates an action with default values that can be overridden.
func CreateTestAction(actionType models.ActionType, config map[string]any) models.Action {
	if config == nil {
		config = map[string]any{}
	}

	return models.Action{
		ID:     uuid.New().String(),
		Type:   actionType,
		Config: config,
	}
}

// CreateTestWorkflow creates a published, enabled workflow with the given branches.
func CreateTestWorkflow(branches []models.Branch, overrides ...func(*models.Workflow)) *models.Workflow {
	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:              uuid.New().String(),
		Name:            "Test Workflow",
		Status:          models.WorkflowStatusPublished,
		WorkflowGroupID: uuid.New().String(),
		Trigger: models.WorkflowTrigger{
			Type: models.TriggerManual,
		},
		Branches:    branches,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: &now,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithStatus sets the workflow status.
func WithStatus(status models.WorkflowStatus) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Status = status
	}
}

// WithEnabled sets the workflow enabled flag.
func WithEnabled(enabled bool) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Enabled = enabled
	}
}

// WithElseActions sets the workflow else-action list.
func WithElseActions(actions ...models.Action) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.ElseActions = actions
	}
}

// WithTrigger sets the workflow trigger.
func WithTrigger(trigger models.WorkflowTrigger) func(*models.Workflow) {
	return func(w *models.Workflow) {
		w.Trigger = trigger
	}
}
