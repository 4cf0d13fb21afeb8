package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedule(t *testing.T) {
	before := time.Now().UTC()

	schedule, err := NewSchedule("sched-group-1", "group-1", "0 9 * * *", "birthday")

	require.NoError(t, err)
	assert.Equal(t, "sched-group-1", schedule.ID)
	assert.Equal(t, "group-1", schedule.WorkflowID)
	assert.Equal(t, "birthday", schedule.Event)
	assert.True(t, schedule.Active)
	assert.True(t, schedule.NextDueAt.After(before))
}

func TestNewSchedule_InvalidCron(t *testing.T) {
	_, err := NewSchedule("sched-1", "group-1", "not a cron", "")

	assert.Error(t, err)
}

func TestScheduleIsDue(t *testing.T) {
	now := time.Now().UTC()

	testCases := []struct {
		name     string
		schedule Schedule
		expected bool
	}{
		{
			name:     "due in the past",
			schedule: Schedule{Active: true, NextDueAt: now.Add(-time.Minute)},
			expected: true,
		},
		{
			name:     "due exactly now",
			schedule: Schedule{Active: true, NextDueAt: now},
			expected: true,
		},
		{
			name:     "due in the future",
			schedule: Schedule{Active: true, NextDueAt: now.Add(time.Minute)},
			expected: false,
		},
		{
			name:     "inactive schedule is never due",
			schedule: Schedule{Active: false, NextDueAt: now.Add(-time.Hour)},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.schedule.IsDue(now))
		})
	}
}

func TestUpdateNextDueAt(t *testing.T) {
	schedule, err := NewSchedule("sched-1", "group-1", "*/5 * * * *", "")
	require.NoError(t, err)

	first := schedule.NextDueAt

	require.NoError(t, schedule.UpdateNextDueAt())

	assert.True(t, !schedule.NextDueAt.Before(first))
	assert.True(t, schedule.NextDueAt.After(time.Now().UTC()))
}

func TestScheduleValidate(t *testing.T) {
	valid := Schedule{ID: "s1", WorkflowID: "g1", CronExpression: "0 9 * * 1"}
	require.NoError(t, valid.Validate())

	assert.ErrorIs(t, (&Schedule{WorkflowID: "g1", CronExpression: "* * * * *"}).Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, (&Schedule{ID: "s1", CronExpression: "* * * * *"}).Validate(), ErrInvalidSchedule)
	assert.Error(t, (&Schedule{ID: "s1", WorkflowID: "g1", CronExpression: "bad"}).Validate())
}
