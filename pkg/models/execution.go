package models

import "time"

// FiringState is the runner state machine for one firing.
type FiringState string

const (
	FiringPending     FiringState = "pending"
	FiringEvaluating  FiringState = "evaluating"
	FiringDispatching FiringState = "dispatching"
	FiringWaiting     FiringState = "waiting" // suspended on a wait action, resume point persisted
	FiringCompleted   FiringState = "completed"
	FiringFailed      FiringState = "failed"
)

// Sentinel matched-branch markers. A real branch match records the branch ID.
const (
	MatchedBranchElse = "else"
	MatchedBranchNone = "none"
)

// ActionStatus is the recorded outcome of one dispatched action.
type ActionStatus string

const (
	ActionStatusSuccess ActionStatus = "success"
	ActionStatusFailed  ActionStatus = "failed"
)

// ActionResult is appended to the execution record as each action settles.
type ActionResult struct {
	ActionID   string       `json:"action_id"`
	ActionType ActionType   `json:"action_type"`
	Status     ActionStatus `json:"status"`
	Attempts   int          `json:"attempts"`
	Timestamp  time.Time    `json:"timestamp"`
	Error      string       `json:"error,omitempty"`
}

// ExecutionRecord is the append-only account of one firing: one workflow, one
// client. It is owned by exactly one firing at a time, never mutated after it
// is sealed.
type ExecutionRecord struct {
	ID              string         `json:"id"`
	WorkflowID      string         `json:"workflow_id"`
	ClientID        string         `json:"client_id"`
	TriggeredAt     time.Time      `json:"triggered_at"`
	State           FiringState    `json:"state"`
	MatchedBranchID string         `json:"matched_branch_id,omitempty"` // branch ID, "else" or "none"
	NextActionIndex int            `json:"next_action_index"`           // resume cursor while waiting
	ActionResults   []ActionResult `json:"action_results"`
	TriggerData     map[string]any `json:"trigger_data,omitempty"`
	Error           string         `json:"error,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// Sealed reports whether the record reached a terminal state.
func (r *ExecutionRecord) Sealed() bool {
	return r.State == FiringCompleted || r.State == FiringFailed
}

// RecordAction appends one action outcome.
func (r *ExecutionRecord) RecordAction(result ActionResult) {
	r.ActionResults = append(r.ActionResults, result)
}

// FailureCountByType aggregates failed actions per action type.
func (r *ExecutionRecord) FailureCountByType() map[ActionType]int {
	counts := make(map[ActionType]int)

	for _, res := range r.ActionResults {
		if res.Status == ActionStatusFailed {
			counts[res.ActionType]++
		}
	}

	return counts
}
