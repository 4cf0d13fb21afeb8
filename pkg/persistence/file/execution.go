package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
)

// ExecutionRepository stores execution records as JSON documents. Records are
// owned by one firing at a time, so plain file writes are safe.
type ExecutionRepository struct {
	root string
}

// NewExecutionRepository creates a new execution record repository.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

// Append persists a freshly created record.
func (er *ExecutionRepository) Append(_ context.Context, record *models.ExecutionRecord) error {
	dir := path.Join(er.root, "executions")

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	return er.write(record)
}

// Update rewrites an in-flight record. The stored copy is checked first: once
// sealed, a record is immutable.
func (er *ExecutionRepository) Update(ctx context.Context, record *models.ExecutionRecord) error {
	stored, err := er.GetByID(ctx, record.ID)
	if err != nil {
		return err
	}

	if stored.Sealed() {
		return &persistence.ExecutionError{Op: "Update", ExecutionID: record.ID, Err: persistence.ErrExecutionSealed}
	}

	return er.write(record)
}

// GetByID retrieves an execution record by its ID.
func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.ExecutionRecord, error) {
	filePath := filepath.Clean(path.Join(er.root, "executions", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &persistence.ExecutionError{Op: "GetByID", ExecutionID: id, Err: persistence.ErrExecutionNotFound}
		}

		return nil, fmt.Errorf("failed to fetch execution %s: %w", id, err)
	}

	var record models.ExecutionRecord

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution %s: %w", id, err)
	}

	return &record, nil
}

// Query returns records matching the filter, newest first.
func (er *ExecutionRepository) Query(ctx context.Context, q persistence.ExecutionQuery) ([]*models.ExecutionRecord, error) {
	records, err := er.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	matching := make([]*models.ExecutionRecord, 0, len(records))

	for _, record := range records {
		if q.WorkflowID != "" && record.WorkflowID != q.WorkflowID {
			continue
		}

		if q.ClientID != "" && record.ClientID != q.ClientID {
			continue
		}

		if !q.Since.IsZero() && record.TriggeredAt.Before(q.Since) {
			continue
		}

		if !q.Until.IsZero() && record.TriggeredAt.After(q.Until) {
			continue
		}

		matching = append(matching, record)
	}

	sort.Slice(matching, func(i, j int) bool {
		return matching[i].TriggeredAt.After(matching[j].TriggeredAt)
	})

	return matching, nil
}

// BranchCounts aggregates firings per matched branch for one workflow.
func (er *ExecutionRepository) BranchCounts(ctx context.Context, workflowID string) (map[string]int, error) {
	records, err := er.Query(ctx, persistence.ExecutionQuery{WorkflowID: workflowID})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)

	for _, record := range records {
		if record.MatchedBranchID != "" {
			counts[record.MatchedBranchID]++
		}
	}

	return counts, nil
}

// ActionFailureCounts aggregates permanently failed actions per action type
// for one workflow.
func (er *ExecutionRepository) ActionFailureCounts(ctx context.Context, workflowID string) (map[models.ActionType]int, error) {
	records, err := er.Query(ctx, persistence.ExecutionQuery{WorkflowID: workflowID})
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ActionType]int)

	for _, record := range records {
		for actionType, n := range record.FailureCountByType() {
			counts[actionType] += n
		}
	}

	return counts, nil
}

func (er *ExecutionRepository) loadAll(ctx context.Context) ([]*models.ExecutionRecord, error) {
	dir := path.Join(er.root, "executions")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.ExecutionRecord{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	records := make([]*models.ExecutionRecord, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		record, err := er.GetByID(ctx, file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

func (er *ExecutionRepository) write(record *models.ExecutionRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", record.ID, err)
	}

	return os.WriteFile(path.Join(er.root, "executions", record.ID+".json"), data, 0600)
}
