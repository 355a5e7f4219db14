package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process Queue implementation. Events live in a
// pending list until received, then in an in-flight table keyed by
// delivery handle until settled. NoAck moves the event back to the end
// of the pending list, which gives at-least-once redelivery within the
// process lifetime.
type MemoryQueue struct {
	mu       sync.Mutex
	pending  []*Event
	inflight map[Handle]*Event
	maxSize  int
	closed   bool

	notify chan struct{}
	done   chan struct{}

	logger *slog.Logger
}

// NewMemoryQueue creates a memory queue holding at most maxSize
// unsettled events. A maxSize of zero or less means unbounded.
func NewMemoryQueue(maxSize int, logger *slog.Logger) *MemoryQueue {
	return &MemoryQueue{
		inflight: make(map[Handle]*Event),
		maxSize:  maxSize,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Put enqueues an event for delivery.
func (q *MemoryQueue) Put(ctx context.Context, ev *Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.maxSize > 0 && len(q.pending)+len(q.inflight) >= q.maxSize {
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, q.maxSize)
	}

	q.pending = append(q.pending, ev)
	q.logger.Debug("event enqueued",
		"event_id", ev.ID,
		"task_id", ev.TaskID,
		"kind", ev.Kind,
		"pending", len(q.pending))

	q.wake()
	return nil
}

// Receive blocks until an event is available, the queue is closed, or
// ctx is done.
func (q *MemoryQueue) Receive(ctx context.Context) (Handle, *Event, error) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			ev := q.pending[0]
			q.pending = q.pending[1:]
			h := uuid.New()
			q.inflight[h] = ev
			q.mu.Unlock()
			return h, ev, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return uuid.Nil, nil, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return uuid.Nil, nil, ctx.Err()
		case <-q.done:
		case <-q.notify:
		}
	}
}

// Ack permanently removes the delivered event.
func (q *MemoryQueue) Ack(ctx context.Context, h Handle) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ev, ok := q.inflight[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	delete(q.inflight, h)
	q.logger.Debug("event acked", "event_id", ev.ID, "task_id", ev.TaskID, "kind", ev.Kind)
	return nil
}

// NoAck returns the delivered event to the pending list for redelivery.
func (q *MemoryQueue) NoAck(ctx context.Context, h Handle) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ev, ok := q.inflight[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	delete(q.inflight, h)
	q.pending = append(q.pending, ev)
	q.logger.Debug("event returned for redelivery",
		"event_id", ev.ID,
		"task_id", ev.TaskID,
		"kind", ev.Kind)

	q.wake()
	return nil
}

// Close stops the queue. Pending and in-flight events are discarded;
// blocked Receive calls return ErrQueueClosed. Safe to call twice.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		q.pending = nil
		close(q.done)
		q.logger.Info("event queue closed")
	}
}

// Pending reports how many events await delivery.
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// InFlight reports how many deliveries await settlement.
func (q *MemoryQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}

// wake nudges a blocked Receive. Called with q.mu held.
func (q *MemoryQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Interface conformance checks.
var (
	_ Queue    = (*MemoryQueue)(nil)
	_ Producer = (*MemoryQueue)(nil)
)
