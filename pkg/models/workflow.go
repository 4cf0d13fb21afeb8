package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow version.
type WorkflowStatus string

const (
	WorkflowStatusDraft       WorkflowStatus = "draft"       // Editable, not executable
	WorkflowStatusPublished   WorkflowStatus = "published"   // Current active, executable
	WorkflowStatusUnpublished WorkflowStatus = "unpublished" // Historical, not executable
)

// TriggerType is the kind of external event that starts a firing.
type TriggerType string

const (
	TriggerSchedule     TriggerType = "schedule"
	TriggerRecordChange TriggerType = "record_change"
	TriggerManual       TriggerType = "manual"
)

// WorkflowTrigger describes what starts the workflow. Schedule triggers carry
// a cron expression and an event name (e.g. "birthday").
type WorkflowTrigger struct {
	Type   TriggerType    `json:"type" validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

// Branch is a named group-of-groups plus an ordered action list; the unit of
// first-match-wins selection. GroupLogic combines the per-group booleans the
// same way a group's logic combines atomic conditions, one level up.
type Branch struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	GroupLogic      GroupLogic       `json:"group_logic" validate:"required,oneof=AND OR"`
	ConditionGroups []ConditionGroup `json:"condition_groups"`
	Actions         []Action         `json:"actions"`
	Order           int              `json:"order"`
}

// Workflow is an automation definition. Runners only ever see published
// versions: edits create a new version in the same group rather than mutating
// a version in place, so an in-flight firing never observes a mutation.
type Workflow struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"        validate:"required,min=3"`
	Description     string          `json:"description"`
	Status          WorkflowStatus  `json:"status"      validate:"required"`
	WorkflowGroupID string          `json:"workflow_group_id"` // Stable ID linking all versions
	Trigger         WorkflowTrigger `json:"trigger"`
	Branches        []Branch        `json:"branches"`
	ElseActions     []Action        `json:"else_actions,omitempty"`
	Enabled         bool            `json:"enabled"`
	Owner           string          `json:"owner,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
}

var (
	ErrConditionlessBranch = errors.New("branch without conditions is only allowed in last position")
	ErrDuplicateBranchID   = errors.New("duplicate branch id")
)

// OrderedBranches returns the branches sorted by their stored order, lower
// first. Sorting is stable so authoring order breaks ties deterministically.
func (w *Workflow) OrderedBranches() []Branch {
	branches := make([]Branch, len(w.Branches))
	copy(branches, w.Branches)

	sort.SliceStable(branches, func(i, j int) bool {
		return branches[i].Order < branches[j].Order
	})

	return branches
}

// HasConditions reports whether the branch constrains anything at all. A
// branch with no groups, or only empty groups, matches every client.
func (b Branch) HasConditions() bool {
	for _, g := range b.ConditionGroups {
		if len(g.Conditions) > 0 {
			return true
		}
	}

	return false
}

// Validate checks the definition for publishing. A condition-less branch
// anywhere but last would silently shadow every later branch, so it is
// rejected; the explicit else-action list is the supported catch-all.
func (w *Workflow) Validate() error {
	seen := make(map[string]struct{}, len(w.Branches))
	branches := w.OrderedBranches()

	for i, b := range branches {
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateBranchID, b.ID)
		}

		seen[b.ID] = struct{}{}

		if b.GroupLogic != LogicAnd && b.GroupLogic != LogicOr {
			return fmt.Errorf("branch %s: invalid group logic %q", b.ID, b.GroupLogic)
		}

		if !b.HasConditions() && i != len(branches)-1 {
			return fmt.Errorf("%w: %s", ErrConditionlessBranch, b.ID)
		}

		for _, g := range b.ConditionGroups {
			if err := g.Validate(); err != nil {
				return fmt.Errorf("branch %s: %w", b.ID, err)
			}
		}
	}

	return nil
}
