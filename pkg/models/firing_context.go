package models

// FiringContext carries per-firing data into deliverers and templates.
type FiringContext struct {
	ExecutionID  string         `json:"execution_id"`
	WorkflowID   string         `json:"workflow_id"`
	WorkflowName string         `json:"workflow_name"`
	BranchID     string         `json:"branch_id,omitempty"`
	TriggerData  map[string]any `json:"trigger_data,omitempty"`
}
