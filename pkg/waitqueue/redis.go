package waitqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKey = "lumera:waits"

// RedisWaitQueue stores resume points in a sorted set scored by due time in
// unix milliseconds, so PopDue is a single range query.
type RedisWaitQueue struct {
	client *redis.Client
}

func NewRedisWaitQueue(redisURL string) (*RedisWaitQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &RedisWaitQueue{client: redis.NewClient(opts)}, nil
}

func (q *RedisWaitQueue) Push(ctx context.Context, point ResumePoint) error {
	payload, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("failed to encode resume point: %w", err)
	}

	member := redis.Z{
		Score:  float64(point.DueAt.UnixMilli()),
		Member: payload,
	}

	if err := q.client.ZAdd(ctx, redisKey, member).Err(); err != nil {
		return fmt.Errorf("failed to schedule resume point: %w", err)
	}

	return nil
}

func (q *RedisWaitQueue) PopDue(ctx context.Context, now time.Time) ([]ResumePoint, error) {
	maxScore := fmt.Sprintf("%d", now.UnixMilli())

	pipe := q.client.TxPipeline()
	rangeCmd := pipe.ZRangeByScore(ctx, redisKey, &redis.ZRangeBy{Min: "0", Max: maxScore})
	pipe.ZRemRangeByScore(ctx, redisKey, "0", maxScore)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to pop due resume points: %w", err)
	}

	members, err := rangeCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due resume points: %w", err)
	}

	points := make([]ResumePoint, 0, len(members))

	for _, member := range members {
		var point ResumePoint
		if err := json.Unmarshal([]byte(member), &point); err != nil {
			return nil, fmt.Errorf("corrupt resume point payload: %w", err)
		}

		points = append(points, point)
	}

	return points, nil
}

func (q *RedisWaitQueue) Close() error {
	return q.client.Close()
}
