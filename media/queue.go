package media

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v7"
)

// Orphan is a remote image whose removal failed.
type Orphan struct {
	ID       string    `json:"id"`
	URL      string    `json:"url"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failedAt"`
}

// Queue holds orphans awaiting another removal attempt.
type Queue interface {
	Push(ctx context.Context, orphan Orphan) error
	// Pop returns the oldest orphan; ok is false when the queue is empty.
	Pop(ctx context.Context) (orphan Orphan, ok bool, err error)
	Len(ctx context.Context) (int, error)
}

// MemoryQueue is a process-local Queue. Its contents are lost on restart.
type MemoryQueue struct {
	mu      sync.Mutex
	orphans []Orphan
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Push(_ context.Context, orphan Orphan) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.orphans = append(q.orphans, orphan)
	return nil
}

func (q *MemoryQueue) Pop(_ context.Context) (Orphan, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.orphans) == 0 {
		return Orphan{}, false, nil
	}
	orphan := q.orphans[0]
	q.orphans = q.orphans[1:]
	return orphan, true, nil
}

func (q *MemoryQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.orphans), nil
}

const DefaultQueueKey = "portfolio:media:orphans"

// RedisQueue keeps orphans in a Redis list so they survive restarts.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &RedisQueue{client: client, key: key}
}

// DialRedisQueue connects to a redis:// URL and checks the connection.
func DialRedisQueue(redisURL, key string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisQueue(client, key), nil
}

func (q *RedisQueue) Push(ctx context.Context, orphan Orphan) error {
	data, err := json.Marshal(orphan)
	if err != nil {
		return err
	}
	return q.client.WithContext(ctx).RPush(q.key, data).Err()
}

func (q *RedisQueue) Pop(ctx context.Context) (Orphan, bool, error) {
	data, err := q.client.WithContext(ctx).LPop(q.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Orphan{}, false, nil
	}
	if err != nil {
		return Orphan{}, false, err
	}

	var orphan Orphan
	if err := json.Unmarshal(data, &orphan); err != nil {
		return Orphan{}, false, err
	}
	return orphan, true, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.WithContext(ctx).LLen(q.key).Result()
	return int(n), err
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
