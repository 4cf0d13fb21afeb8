// Package web provides HTTP handlers and REST API endpoints for workflow
// management, execution history and segment previews.
package web

import (
	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/segment"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string                 `json:"name"         validate:"required,min=3"`
	Description string                 `json:"description"`
	Trigger     models.WorkflowTrigger `json:"trigger"      validate:"required"`
	Branches    []models.Branch        `json:"branches"`
	ElseActions []models.Action        `json:"else_actions"`
	Enabled     *bool                  `json:"enabled"`
	Owner       string                 `json:"owner"`
}

// UpdateWorkflowRequest represents the request body for updating a draft.
// All fields are optional to support partial updates; branch and action
// lists replace the existing ones when present.
type UpdateWorkflowRequest struct {
	Name        *string                 `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string                 `json:"description,omitempty"`
	Trigger     *models.WorkflowTrigger `json:"trigger,omitempty"`
	Branches    []models.Branch         `json:"branches,omitempty"`
	ElseActions []models.Action         `json:"else_actions,omitempty"`
	Enabled     *bool                   `json:"enabled,omitempty"`
}

// TriggerWorkflowRequest asks for one manual firing.
type TriggerWorkflowRequest struct {
	ClientID    string         `json:"client_id" validate:"required"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

// SetEnabledRequest flips the enabled flag of a published workflow.
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// PreviewSegmentRequest evaluates a segment definition against the client
// directory without saving it.
type PreviewSegmentRequest struct {
	Definition segment.Definition `json:"definition" validate:"required"`
}
