// Package events defines the event types published around the firing
// lifecycle.
package events

import (
	"time"
)

type EventType string

// Topic carries every firing lifecycle event.
const Topic = "lumera.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Trigger intake.
	WorkflowTriggeredEvent EventType = "workflow.triggered"

	// Firing lifecycle.
	FiringStartedEvent   EventType = "firing.started"
	BranchMatchedEvent   EventType = "firing.branch.matched"
	ActionFailedEvent    EventType = "firing.action.failed"
	WaitScheduledEvent   EventType = "firing.wait.scheduled"
	DispatchResumeEvent  EventType = "firing.dispatch.resume"
	FiringCompletedEvent EventType = "firing.completed"
	FiringFailedEvent    EventType = "firing.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	WorkerID   string         `json:"worker_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowTriggered asks a worker to run one firing for one client.
type WorkflowTriggered struct {
	BaseEvent

	ClientID    string         `json:"client_id"`
	TriggerType string         `json:"trigger_type"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

func (e WorkflowTriggered) GetType() EventType {
	return WorkflowTriggeredEvent
}

type FiringStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	ClientID    string `json:"client_id"`
}

func (e FiringStarted) GetType() EventType {
	return FiringStartedEvent
}

// BranchMatched records the selection outcome, independent of whether the
// subsequent dispatch succeeds.
type BranchMatched struct {
	BaseEvent

	ExecutionID     string `json:"execution_id"`
	ClientID        string `json:"client_id"`
	MatchedBranchID string `json:"matched_branch_id"` // branch ID, "else" or "none"
}

func (e BranchMatched) GetType() EventType {
	return BranchMatchedEvent
}

type ActionFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	ActionID    string `json:"action_id"`
	ActionType  string `json:"action_type"`
	Attempts    int    `json:"attempts"`
	Error       string `json:"error"`
}

func (e ActionFailed) GetType() EventType {
	return ActionFailedEvent
}

type WaitScheduled struct {
	BaseEvent

	ExecutionID string    `json:"execution_id"`
	ActionIndex int       `json:"action_index"`
	ResumeAt    time.Time `json:"resume_at"`
}

func (e WaitScheduled) GetType() EventType {
	return WaitScheduledEvent
}

// DispatchResume asks a worker to continue a suspended firing at the given
// action index.
type DispatchResume struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	ClientID    string `json:"client_id"`
	ActionIndex int    `json:"action_index"`
}

func (e DispatchResume) GetType() EventType {
	return DispatchResumeEvent
}

type FiringCompleted struct {
	BaseEvent

	ExecutionID     string        `json:"execution_id"`
	ClientID        string        `json:"client_id"`
	MatchedBranchID string        `json:"matched_branch_id"`
	FailedActions   int           `json:"failed_actions"`
	Duration        time.Duration `json:"duration"`
}

func (e FiringCompleted) GetType() EventType {
	return FiringCompletedEvent
}

// FiringFailed is published only for runner-level faults: unresolvable
// client, invalid workflow. Partial action failures complete normally.
type FiringFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	ClientID    string `json:"client_id"`
	Error       string `json:"error"`
}

func (e FiringFailed) GetType() EventType {
	return FiringFailedEvent
}
