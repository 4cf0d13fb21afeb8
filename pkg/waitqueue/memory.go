package waitqueue

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryWaitQueue keeps resume points in memory. Pending waits do not survive
// a restart; it exists for development and tests.
type MemoryWaitQueue struct {
	mu     sync.Mutex
	points []ResumePoint
}

func NewMemoryWaitQueue() *MemoryWaitQueue {
	return &MemoryWaitQueue{}
}

func (q *MemoryWaitQueue) Push(_ context.Context, point ResumePoint) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.points = append(q.points, point)

	return nil
}

func (q *MemoryWaitQueue) PopDue(_ context.Context, now time.Time) ([]ResumePoint, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due, pending []ResumePoint

	for _, p := range q.points {
		if !p.DueAt.After(now) {
			due = append(due, p)
		} else {
			pending = append(pending, p)
		}
	}

	q.points = pending

	sort.Slice(due, func(i, j int) bool { return due[i].DueAt.Before(due[j].DueAt) })

	return due, nil
}

func (q *MemoryWaitQueue) Close() error {
	return nil
}
