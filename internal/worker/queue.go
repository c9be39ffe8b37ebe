// Package worker implements the indexing queue and the long-lived worker
// that drains it, driving fetch -> replay -> extract -> store for each
// IndexingRequest (spec §4.9).
package worker

import "context"

// IndexMessage is the unit of work the queue carries (spec §4.9).
type IndexMessage struct {
	RequestID  string
	Player     string
	Platform   string
	StartMonth string // "YYYY-MM"
	EndMonth   string
}

// Queue is a process-internal ordered FIFO. A durable broker is a drop-in
// replacement behind the same Enqueue/Dequeue contract (spec §5, §9); this
// implementation is the in-memory reference the core assumes is sufficient
// since all durable state lives in the feature store, not the queue.
type Queue struct {
	capacity int
	messages chan IndexMessage
}

// NewQueue returns a Queue. capacity <= 0 means unbounded (spec §6
// QUEUE_CAPACITY: "0 means unbounded"); an unbounded queue is backed by a
// generous buffer since an unbuffered Go channel of unknown size is not a
// true FIFO of infinite depth.
func NewQueue(capacity int) *Queue {
	size := capacity
	if size <= 0 {
		size = 1 << 16
	}
	return &Queue{capacity: capacity, messages: make(chan IndexMessage, size)}
}

// Enqueue appends msg to the back of the queue. It is fire-and-forget per
// spec §6's ingest API contract: the caller does not wait for processing.
func (q *Queue) Enqueue(msg IndexMessage) {
	q.messages <- msg
}

// Dequeue blocks until a message is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (IndexMessage, bool) {
	select {
	case msg := <-q.messages:
		return msg, true
	case <-ctx.Done():
		return IndexMessage{}, false
	}
}
