package cmd

import (
	"fmt"
	"strings"

	"github.com/lumera-app/lumera/pkg/waitqueue"
)

// NewWaitQueue picks the wait queue backend from the URL scheme. Redis gives
// durable waits shared across workers; the in-memory queue is for
// single-process development only.
func NewWaitQueue(queueURL string) (waitqueue.WaitQueue, error) {
	switch {
	case strings.HasPrefix(queueURL, "redis://"), strings.HasPrefix(queueURL, "rediss://"):
		queue, err := waitqueue.NewRedisWaitQueue(queueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis wait queue: %w", err)
		}

		return queue, nil
	case queueURL == "" || queueURL == "memory":
		return waitqueue.NewMemoryWaitQueue(), nil
	default:
		return nil, fmt.Errorf("unsupported wait queue url: %s", queueURL)
	}
}
