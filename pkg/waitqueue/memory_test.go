package waitqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWaitQueue_PopDueReturnsOnlyDuePoints(t *testing.T) {
	queue := NewMemoryWaitQueue()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, queue.Push(ctx, ResumePoint{ExecutionID: "e1", DueAt: now.Add(-time.Minute)}))
	require.NoError(t, queue.Push(ctx, ResumePoint{ExecutionID: "e2", DueAt: now}))
	require.NoError(t, queue.Push(ctx, ResumePoint{ExecutionID: "e3", DueAt: now.Add(time.Hour)}))

	due, err := queue.PopDue(ctx, now)

	require.NoError(t, err)
	require.Len(t, due, 2)
	// Oldest due point first.
	assert.Equal(t, "e1", due[0].ExecutionID)
	assert.Equal(t, "e2", due[1].ExecutionID)
}

func TestMemoryWaitQueue_PopDueIsDestructive(t *testing.T) {
	queue := NewMemoryWaitQueue()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, queue.Push(ctx, ResumePoint{ExecutionID: "e1", DueAt: now.Add(-time.Minute)}))
	require.NoError(t, queue.Push(ctx, ResumePoint{ExecutionID: "e2", DueAt: now.Add(time.Hour)}))

	first, err := queue.PopDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := queue.PopDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, second)

	// The future point pops once its time comes.
	later, err := queue.PopDue(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "e2", later[0].ExecutionID)
}

func TestMemoryWaitQueue_PreservesResumeCursor(t *testing.T) {
	queue := NewMemoryWaitQueue()
	ctx := context.Background()
	now := time.Now().UTC()

	point := ResumePoint{
		ExecutionID: "e1",
		WorkflowID:  "wf-1",
		ClientID:    "c1",
		ActionIndex: 3,
		DueAt:       now.Add(-time.Second),
	}
	require.NoError(t, queue.Push(ctx, point))

	due, err := queue.PopDue(ctx, now)

	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, point, due[0])
	assert.NoError(t, queue.Close())
}
