// Package persistence provides the data storage abstraction for workflows,
// execution records and schedules.
package persistence

import (
	"context"
	"time"

	"github.com/lumera-app/lumera/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	ScheduleRepository() ScheduleRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow versions. Published versions are
// immutable: editing goes through a new draft in the same group.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.Workflow) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context) ([]*models.Workflow, error)
	// GetPublishedByGroup returns the currently published version of a
	// workflow group, or ErrPublishedWorkflowNotFound.
	GetPublishedByGroup(ctx context.Context, groupID string) (*models.Workflow, error)
	Delete(ctx context.Context, id string) error
}

// ExecutionQuery filters execution record listings.
type ExecutionQuery struct {
	WorkflowID string
	ClientID   string
	Since      time.Time
	Until      time.Time
}

// ExecutionRepository is an append-only record store. Each firing owns its
// record exclusively until sealed, so no cross-firing locking is needed.
type ExecutionRepository interface {
	Append(ctx context.Context, record *models.ExecutionRecord) error
	// Update rewrites a record that is still owned by an in-flight firing.
	// Sealed records are immutable; updating one is an error.
	Update(ctx context.Context, record *models.ExecutionRecord) error
	GetByID(ctx context.Context, id string) (*models.ExecutionRecord, error)
	Query(ctx context.Context, q ExecutionQuery) ([]*models.ExecutionRecord, error)

	// BranchCounts returns firings per matched branch ("else" and "none"
	// included) for operator statistics.
	BranchCounts(ctx context.Context, workflowID string) (map[string]int, error)
	// ActionFailureCounts returns permanently failed actions per action type.
	ActionFailureCounts(ctx context.Context, workflowID string) (map[models.ActionType]int, error)
}

// ScheduleRepository stores scheduled-trigger entries with precomputed due
// times.
type ScheduleRepository interface {
	Save(ctx context.Context, schedule *models.Schedule) error
	ListDue(ctx context.Context, now time.Time) ([]*models.Schedule, error)
	List(ctx context.Context) ([]*models.Schedule, error)
	Delete(ctx context.Context, id string) error
}
