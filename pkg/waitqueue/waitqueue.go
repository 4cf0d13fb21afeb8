// Package waitqueue persists wait-action resume points so pending waits
// survive process restarts. A wait suspends the firing by scheduling a
// resumption rather than sleeping on a worker.
package waitqueue

import (
	"context"
	"time"
)

// ResumePoint marks where a suspended firing's dispatch continues.
type ResumePoint struct {
	ExecutionID string    `json:"execution_id"`
	WorkflowID  string    `json:"workflow_id"`
	ClientID    string    `json:"client_id"`
	ActionIndex int       `json:"action_index"` // index of the first action still to run
	DueAt       time.Time `json:"due_at"`
}

// WaitQueue is a durable delay queue of resume points.
type WaitQueue interface {
	// Push schedules a resume point for its DueAt time.
	Push(ctx context.Context, point ResumePoint) error
	// PopDue atomically removes and returns every point due at or before now.
	PopDue(ctx context.Context, now time.Time) ([]ResumePoint, error)
	Close() error
}
