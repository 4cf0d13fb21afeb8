package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
)

// ScheduleRepository stores schedule entries as JSON documents.
type ScheduleRepository struct {
	root string
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(root string) *ScheduleRepository {
	return &ScheduleRepository{root: root}
}

// Save persists a schedule entry.
func (sr *ScheduleRepository) Save(_ context.Context, schedule *models.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	dir := path.Join(sr.root, "schedules")

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create schedules directory: %w", err)
	}

	data, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schedule %s: %w", schedule.ID, err)
	}

	return os.WriteFile(path.Join(dir, schedule.ID+".json"), data, 0600)
}

// List returns all schedule entries.
func (sr *ScheduleRepository) List(_ context.Context) ([]*models.Schedule, error) {
	dir := path.Join(sr.root, "schedules")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.Schedule{}, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule files: %w", err)
	}

	schedules := make([]*models.Schedule, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		schedule, err := sr.read(file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		schedules = append(schedules, schedule)
	}

	return schedules, nil
}

// ListDue returns active schedules whose next execution time has passed.
func (sr *ScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	schedules, err := sr.List(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]*models.Schedule, 0, len(schedules))

	for _, schedule := range schedules {
		if schedule.IsDue(now) {
			due = append(due, schedule)
		}
	}

	return due, nil
}

// Delete removes a schedule entry. Deleting a missing entry is a no-op.
func (sr *ScheduleRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(path.Join(sr.root, "schedules", id+".json"))

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}

	return nil
}

func (sr *ScheduleRepository) read(id string) (*models.Schedule, error) {
	filePath := filepath.Clean(path.Join(sr.root, "schedules", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", persistence.ErrScheduleNotFound, id)
		}

		return nil, fmt.Errorf("failed to fetch schedule %s: %w", id, err)
	}

	var schedule models.Schedule

	err = json.Unmarshal(body, &schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule %s: %w", id, err)
	}

	return &schedule, nil
}
