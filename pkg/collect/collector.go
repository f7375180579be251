// Package collect buffers raw messages between the external capture
// mechanism and the curation pipeline. The queue is bounded and lossy:
// the collector represents a live, re-observable external state, so a
// full queue drops rather than blocks.
package collect

import (
	"sync/atomic"
	"time"

	"curatord/pkg/logger"
	"curatord/pkg/models"
)

const defaultCapacity = 4096

// DefaultBatchSize bounds how many raw messages one cycle consumes.
const DefaultBatchSize = 256

// Collector yields batches of raw messages to the pipeline.
type Collector interface {
	NextBatch() []models.Message
}

// Queue is a threadsafe, fixed-size in-memory queue of raw messages.
type Queue struct {
	ch        chan models.Message
	batchSize int
	dropped   uint64
}

// NewQueue creates a bounded queue. capacity <= 0 and batchSize <= 0 fall
// back to defaults.
func NewQueue(capacity, batchSize int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Queue{ch: make(chan models.Message, capacity), batchSize: batchSize}
}

// Offer enqueues a raw message without blocking; returns false when the
// queue is full.
func (q *Queue) Offer(m models.Message) bool {
	if m.TS == 0 {
		m.TS = time.Now().UTC().UnixNano()
	}
	select {
	case q.ch <- m:
		return true
	default:
		atomic.AddUint64(&q.dropped, 1)
		logger.Warn("collector_queue_full", "dropped_total", atomic.LoadUint64(&q.dropped))
		return false
	}
}

// NextBatch drains up to the configured batch size without blocking.
func (q *Queue) NextBatch() []models.Message {
	var out []models.Message
	for len(out) < q.batchSize {
		select {
		case m := <-q.ch:
			out = append(out, m)
		default:
			return out
		}
	}
	return out
}

// Dropped returns how many messages were dropped due to a full queue.
func (q *Queue) Dropped() uint64 { return atomic.LoadUint64(&q.dropped) }

// Len reports the number of messages waiting in the queue.
func (q *Queue) Len() int { return len(q.ch) }

// Cap reports the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }
