package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
)

// ExecutionRepository stores execution records. Action results are a JSONB
// array; branch and failure statistics aggregate over it in SQL.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution record repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `
	id
  , workflow_id
  , client_id
  , triggered_at
  , state
  , matched_branch_id
  , next_action_index
  , action_results
  , trigger_data
  , error
  , completed_at
`

func scanExecution(row rowScanner) (*models.ExecutionRecord, error) {
	var (
		record          models.ExecutionRecord
		resultsJSON     []byte
		triggerDataJSON []byte
	)

	err := row.Scan(
		&record.ID,
		&record.WorkflowID,
		&record.ClientID,
		&record.TriggeredAt,
		&record.State,
		&record.MatchedBranchID,
		&record.NextActionIndex,
		&resultsJSON,
		&triggerDataJSON,
		&record.Error,
		&record.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(resultsJSON, &record.ActionResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action results: %w", err)
	}

	if len(triggerDataJSON) > 0 {
		if err := json.Unmarshal(triggerDataJSON, &record.TriggerData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
		}
	}

	return &record, nil
}

// Append persists a freshly created record.
func (r *ExecutionRepository) Append(ctx context.Context, record *models.ExecutionRecord) error {
	resultsJSON, triggerDataJSON, err := marshalExecution(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO executions (id, workflow_id, client_id, triggered_at, state,
			matched_branch_id, next_action_index, action_results, trigger_data, error, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.WorkflowID,
		record.ClientID,
		record.TriggeredAt,
		record.State,
		record.MatchedBranchID,
		record.NextActionIndex,
		resultsJSON,
		triggerDataJSON,
		record.Error,
		record.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append execution %s: %w", record.ID, err)
	}

	return nil
}

// Update rewrites an in-flight record. The WHERE clause excludes terminal
// states, so a sealed record can never be overwritten even by a racing
// resume.
func (r *ExecutionRepository) Update(ctx context.Context, record *models.ExecutionRecord) error {
	resultsJSON, triggerDataJSON, err := marshalExecution(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE executions SET
			state = $2,
			matched_branch_id = $3,
			next_action_index = $4,
			action_results = $5,
			trigger_data = $6,
			error = $7,
			completed_at = $8
		WHERE id = $1 AND state NOT IN ($9, $10)
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.State,
		record.MatchedBranchID,
		record.NextActionIndex,
		resultsJSON,
		triggerDataJSON,
		record.Error,
		record.CompletedAt,
		models.FiringCompleted,
		models.FiringFailed,
	)
	if err != nil {
		return fmt.Errorf("failed to update execution %s: %w", record.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}

	if affected == 0 {
		stored, err := r.GetByID(ctx, record.ID)
		if err != nil {
			return err
		}

		if stored.Sealed() {
			return &persistence.ExecutionError{Op: "Update", ExecutionID: record.ID, Err: persistence.ErrExecutionSealed}
		}

		return &persistence.ExecutionError{Op: "Update", ExecutionID: record.ID, Err: persistence.ErrExecutionNotFound}
	}

	return nil
}

// GetByID retrieves an execution record by its ID.
func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE id = $1`

	record, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &persistence.ExecutionError{Op: "GetByID", ExecutionID: id, Err: persistence.ErrExecutionNotFound}
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return record, nil
}

// Query returns records matching the filter, newest first.
func (r *ExecutionRepository) Query(ctx context.Context, q persistence.ExecutionQuery) ([]*models.ExecutionRecord, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE 1=1`

	args := make([]any, 0, 4)

	if q.WorkflowID != "" {
		args = append(args, q.WorkflowID)
		query += fmt.Sprintf(" AND workflow_id = $%d", len(args))
	}

	if q.ClientID != "" {
		args = append(args, q.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}

	if !q.Since.IsZero() {
		args = append(args, q.Since)
		query += fmt.Sprintf(" AND triggered_at >= $%d", len(args))
	}

	if !q.Until.IsZero() {
		args = append(args, q.Until)
		query += fmt.Sprintf(" AND triggered_at <= $%d", len(args))
	}

	query += " ORDER BY triggered_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.ExecutionRecord, 0)

	for rows.Next() {
		record, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return records, nil
}

// BranchCounts aggregates firings per matched branch for one workflow.
func (r *ExecutionRepository) BranchCounts(ctx context.Context, workflowID string) (map[string]int, error) {
	query := `
		SELECT matched_branch_id, COUNT(*)
		FROM executions
		WHERE workflow_id = $1 AND matched_branch_id <> ''
		GROUP BY matched_branch_id
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query branch counts: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	counts := make(map[string]int)

	for rows.Next() {
		var (
			branchID string
			count    int
		)

		if err := rows.Scan(&branchID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan branch count: %w", err)
		}

		counts[branchID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branch counts: %w", err)
	}

	return counts, nil
}

// ActionFailureCounts aggregates permanently failed actions per action type
// for one workflow, unnesting the action_results JSONB array.
func (r *ExecutionRepository) ActionFailureCounts(ctx context.Context, workflowID string) (map[models.ActionType]int, error) {
	query := `
		SELECT result->>'action_type', COUNT(*)
		FROM executions, jsonb_array_elements(action_results) AS result
		WHERE workflow_id = $1 AND result->>'status' = 'failed'
		GROUP BY result->>'action_type'
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query action failure counts: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	counts := make(map[models.ActionType]int)

	for rows.Next() {
		var (
			actionType string
			count      int
		)

		if err := rows.Scan(&actionType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan action failure count: %w", err)
		}

		counts[models.ActionType(actionType)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action failure counts: %w", err)
	}

	return counts, nil
}

func marshalExecution(record *models.ExecutionRecord) (resultsJSON, triggerDataJSON []byte, err error) {
	resultsJSON, err = json.Marshal(record.ActionResults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal action results: %w", err)
	}

	if record.ActionResults == nil {
		resultsJSON = []byte("[]")
	}

	if record.TriggerData != nil {
		triggerDataJSON, err = json.Marshal(record.TriggerData)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal trigger data: %w", err)
		}
	}

	return resultsJSON, triggerDataJSON, nil
}
