package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumera-app/lumera/pkg/models"
)

// ScheduleRepository stores schedule entries with precomputed due times. The
// ListDue query is the scheduler's hot path and is covered by the
// (active, next_due_at) index.
type ScheduleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sql.DB, logger *slog.Logger) *ScheduleRepository {
	return &ScheduleRepository{db: db, logger: logger}
}

// Save upserts a schedule entry.
func (r *ScheduleRepository) Save(ctx context.Context, schedule *models.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO schedules (id, workflow_id, cron_expression, event, next_due_at, created_at, updated_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			workflow_id = EXCLUDED.workflow_id,
			cron_expression = EXCLUDED.cron_expression,
			event = EXCLUDED.event,
			next_due_at = EXCLUDED.next_due_at,
			updated_at = EXCLUDED.updated_at,
			active = EXCLUDED.active
	`

	_, err := r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.WorkflowID,
		schedule.CronExpression,
		schedule.Event,
		schedule.NextDueAt,
		schedule.CreatedAt,
		schedule.UpdatedAt,
		schedule.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to save schedule %s: %w", schedule.ID, err)
	}

	return nil
}

// ListDue returns active schedules whose next execution time has passed.
func (r *ScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	query := `
		SELECT id, workflow_id, cron_expression, event, next_due_at, created_at, updated_at, active
		FROM schedules
		WHERE active = true AND next_due_at <= $1
		ORDER BY next_due_at
	`

	return r.list(ctx, query, now)
}

// List returns all schedule entries.
func (r *ScheduleRepository) List(ctx context.Context) ([]*models.Schedule, error) {
	query := `
		SELECT id, workflow_id, cron_expression, event, next_due_at, created_at, updated_at, active
		FROM schedules
		ORDER BY next_due_at
	`

	return r.list(ctx, query)
}

// Delete removes a schedule entry. Deleting a missing entry is a no-op.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}

	return nil
}

func (r *ScheduleRepository) list(ctx context.Context, query string, args ...any) ([]*models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	schedules := make([]*models.Schedule, 0)

	for rows.Next() {
		var schedule models.Schedule

		err := rows.Scan(
			&schedule.ID,
			&schedule.WorkflowID,
			&schedule.CronExpression,
			&schedule.Event,
			&schedule.NextDueAt,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
			&schedule.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}

		schedules = append(schedules, &schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}
