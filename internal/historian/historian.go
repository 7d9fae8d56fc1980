// internal/historian/historian.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/yaniv/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sink persists batches of action records.
type Sink interface {
	InsertActions(ctx context.Context, recs []cache.ActionRecord) error
}

// Historian drains the action journal queue into a Sink in batches.
type Historian struct {
	rdb    *redis.Client
	sink   Sink
	queue  string
	logger *logrus.Logger

	BatchSize  int
	FlushDelay time.Duration
	// PopTimeout bounds each blocking pop so cancellation is noticed.
	PopTimeout time.Duration

	batchMu sync.Mutex
	batch   []cache.ActionRecord
}

// New returns a historian reading queue from rdb.
func New(rdb *redis.Client, sink Sink, queue string, logger *logrus.Logger) *Historian {
	if queue == "" {
		queue = cache.DefaultQueueName
	}
	return &Historian{
		rdb:        rdb,
		sink:       sink,
		queue:      queue,
		logger:     logger,
		BatchSize:  20,
		FlushDelay: 500 * time.Millisecond,
		PopTimeout: 3 * time.Second,
	}
}

// Run pops records until ctx is cancelled, flushing on size and on a timer.
// Whatever is buffered at shutdown is flushed before returning.
func (h *Historian) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.FlushDelay)
	defer ticker.Stop()
	defer h.Flush(context.Background())

	h.logger.WithField("queue", h.queue).Info("Historian started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Historian shutting down")
			return nil
		case <-ticker.C:
			h.Flush(ctx)
		default:
			res, err := h.rdb.BLPop(ctx, h.PopTimeout, h.queue).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
					continue
				}
				h.logger.WithError(err).Error("BLPop failed")
				continue
			}
			// res[0] is the queue name and res[1] the payload.
			if len(res) < 2 {
				continue
			}
			h.Ingest(ctx, res[1])
		}
	}
}

// Ingest decodes one queued payload into the batch, flushing when full.
func (h *Historian) Ingest(ctx context.Context, payload string) {
	var rec cache.ActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		h.logger.WithError(err).Warn("Invalid action record")
		return
	}
	if rec.RoomID == "" {
		h.logger.Warn("Action record without room_id")
		return
	}

	h.batchMu.Lock()
	h.batch = append(h.batch, rec)
	full := len(h.batch) >= h.BatchSize
	h.batchMu.Unlock()

	if full {
		h.Flush(ctx)
	}
}

// Flush writes the buffered batch. A failed batch is put back for the next flush.
func (h *Historian) Flush(ctx context.Context) {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	batch := h.batch
	h.batch = nil
	h.batchMu.Unlock()

	if err := h.sink.InsertActions(ctx, batch); err != nil {
		h.logger.WithError(err).Errorf("Failed to flush %d actions", len(batch))
		h.batchMu.Lock()
		h.batch = append(batch, h.batch...)
		h.batchMu.Unlock()
		return
	}
	h.logger.Debugf("Flushed %d actions to DB.", len(batch))
}

// Pending returns the number of buffered records.
func (h *Historian) Pending() int {
	h.batchMu.Lock()
	defer h.batchMu.Unlock()
	return len(h.batch)
}
