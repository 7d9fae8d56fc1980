// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that applied room commands are pushed to.
const DefaultQueueName = "yaniv_actions"

// ActionRecord is one applied command, as consumed by downstream replay or audit tooling.
type ActionRecord struct {
	RoomID        string          `json:"room_id"`
	ActionIndex   int             `json:"action_index"`
	Actor         string          `json:"actor"`
	ActionType    string          `json:"action_type"`
	ActionPayload json.RawMessage `json:"action_payload,omitempty"`
	Timestamp     int64           `json:"timestamp"`
}

// NewActionRecord stamps a record with the current time in milliseconds.
func NewActionRecord(roomID string, index int, actor, actionType string, payload json.RawMessage) ActionRecord {
	return ActionRecord{
		RoomID:        roomID,
		ActionIndex:   index,
		Actor:         actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
}

// Journal receives every applied room command.
type Journal interface {
	Publish(ctx context.Context, record ActionRecord) error
}

// NopJournal discards every record. It is used when no Redis address is configured.
type NopJournal struct{}

func (NopJournal) Publish(context.Context, ActionRecord) error { return nil }

// ConnectRedis opens a client against addr and checks it with a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisJournal appends records to a Redis list with RPUSH.
type RedisJournal struct {
	rdb   *redis.Client
	queue string
}

// NewRedisJournal returns a journal writing to queue. An empty queue means DefaultQueueName.
func NewRedisJournal(rdb *redis.Client, queue string) *RedisJournal {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisJournal{rdb: rdb, queue: queue}
}

// Queue returns the list name records are pushed to.
func (j *RedisJournal) Queue() string {
	return j.queue
}

// Publish serializes the record to JSON and pushes it onto the queue.
func (j *RedisJournal) Publish(ctx context.Context, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", j.queue, err)
	}
	return nil
}
