package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrQueueEmpty = errors.New("queue empty")

// Queue is a FIFO list: producers LPUSH, consumers BRPOP.
type Queue struct {
	redisdb *redis.Client
	key     string
}

func (c *Client) Queue(key string) *Queue {
	return &Queue{redisdb: c.redisdb, key: key}
}

func (q *Queue) Push(ctx context.Context, msg []byte) error {
	return q.redisdb.LPush(ctx, q.key, msg).Err()
}

// Pop blocks for up to timeout. It returns ErrQueueEmpty when nothing arrived.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.redisdb.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}

	// BRPOP replies [key, value]
	if len(res) != 2 {
		return nil, ErrQueueEmpty
	}

	return []byte(res[1]), nil
}

// Requeue puts msg back at the consuming end so it is retried first.
func (q *Queue) Requeue(ctx context.Context, msg []byte) error {
	return q.redisdb.RPush(ctx, q.key, msg).Err()
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.redisdb.LLen(ctx, q.key).Result()
}
