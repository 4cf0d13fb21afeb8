package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations. Branches,
// else-actions and the trigger are stored as JSONB documents: a workflow
// version is read and written whole, never partially updated.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , workflow_group_id
  , name
  , description
  , status
  , trigger
  , branches
  , else_actions
  , enabled
  , owner
  , created_at
  , updated_at
  , published_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow        models.Workflow
		triggerJSON     []byte
		branchesJSON    []byte
		elseActionsJSON []byte
		owner           sql.NullString
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.WorkflowGroupID,
		&workflow.Name,
		&workflow.Description,
		&workflow.Status,
		&triggerJSON,
		&branchesJSON,
		&elseActionsJSON,
		&workflow.Enabled,
		&owner,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&workflow.PublishedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Owner = owner.String

	if err := json.Unmarshal(triggerJSON, &workflow.Trigger); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger: %w", err)
	}

	if err := json.Unmarshal(branchesJSON, &workflow.Branches); err != nil {
		return nil, fmt.Errorf("failed to unmarshal branches: %w", err)
	}

	if err := json.Unmarshal(elseActionsJSON, &workflow.ElseActions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal else actions: %w", err)
	}

	return &workflow, nil
}

// GetByID retrieves a workflow by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// List returns all workflow versions, newest first.
func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// GetPublishedByGroup returns the currently published version of a workflow
// group.
func (r *WorkflowRepository) GetPublishedByGroup(ctx context.Context, groupID string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE workflow_group_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, groupID, models.WorkflowStatusPublished))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowGroupError("GetPublishedByGroup", groupID, persistence.ErrPublishedWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// Save upserts a workflow version.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	triggerJSON, err := json.Marshal(workflow.Trigger)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger: %w", err)
	}

	branchesJSON, err := json.Marshal(workflow.Branches)
	if err != nil {
		return fmt.Errorf("failed to marshal branches: %w", err)
	}

	elseActionsJSON, err := json.Marshal(workflow.ElseActions)
	if err != nil {
		return fmt.Errorf("failed to marshal else actions: %w", err)
	}

	if workflow.Branches == nil {
		branchesJSON = []byte("[]")
	}

	if workflow.ElseActions == nil {
		elseActionsJSON = []byte("[]")
	}

	query := `
		INSERT INTO workflows (id, workflow_group_id, name, description, status,
			trigger, branches, else_actions, enabled, owner, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			workflow_group_id = EXCLUDED.workflow_group_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			trigger = EXCLUDED.trigger,
			branches = EXCLUDED.branches,
			else_actions = EXCLUDED.else_actions,
			enabled = EXCLUDED.enabled,
			owner = EXCLUDED.owner,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.WorkflowGroupID,
		workflow.Name,
		workflow.Description,
		workflow.Status,
		triggerJSON,
		branchesJSON,
		elseActionsJSON,
		workflow.Enabled,
		nullString(workflow.Owner),
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete removes a workflow version. Deleting a missing workflow is a no-op.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
