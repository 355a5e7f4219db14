package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hashgrid/tasknode/internal/event"
)

// QueueCall records one settlement made against a MockQueue.
type QueueCall struct {
	Op     string // "ack" or "no_ack"
	Handle event.Handle
	At     time.Time
}

type mockDelivery struct {
	handle event.Handle
	ev     *event.Event
}

// MockQueue is a scriptable event.Queue for testing the dispatcher.
// Tests feed deliveries with Deliver and observe settlements either
// through the Settled channel or the Calls snapshot.
type MockQueue struct {
	// AckFn and NoAckFn, when set, replace the default no-op behavior
	AckFn   func(ctx context.Context, h event.Handle) error
	NoAckFn func(ctx context.Context, h event.Handle) error

	// Settled receives every recorded settlement in order
	Settled chan QueueCall

	mu      sync.Mutex
	calls   []QueueCall
	pending chan mockDelivery
}

// NewMockQueue creates a MockQueue with room for a test's worth of
// deliveries and settlements.
func NewMockQueue() *MockQueue {
	return &MockQueue{
		Settled: make(chan QueueCall, 32),
		pending: make(chan mockDelivery, 32),
	}
}

// Deliver hands an event to the next Receive call and returns the
// delivery handle it will arrive under.
func (q *MockQueue) Deliver(ev *event.Event) event.Handle {
	h := uuid.New()
	q.pending <- mockDelivery{handle: h, ev: ev}
	return h
}

// Receive blocks until a delivery is available or ctx is done.
func (q *MockQueue) Receive(ctx context.Context) (event.Handle, *event.Event, error) {
	select {
	case <-ctx.Done():
		return uuid.Nil, nil, ctx.Err()
	case d := <-q.pending:
		return d.handle, d.ev, nil
	}
}

// Ack records the settlement and runs AckFn if set.
func (q *MockQueue) Ack(ctx context.Context, h event.Handle) error {
	q.record("ack", h)
	if q.AckFn != nil {
		return q.AckFn(ctx, h)
	}
	return nil
}

// NoAck records the settlement and runs NoAckFn if set.
func (q *MockQueue) NoAck(ctx context.Context, h event.Handle) error {
	q.record("no_ack", h)
	if q.NoAckFn != nil {
		return q.NoAckFn(ctx, h)
	}
	return nil
}

// Calls returns a snapshot of all recorded settlements.
func (q *MockQueue) Calls() []QueueCall {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]QueueCall(nil), q.calls...)
}

func (q *MockQueue) record(op string, h event.Handle) {
	call := QueueCall{Op: op, Handle: h, At: time.Now()}
	q.mu.Lock()
	q.calls = append(q.calls, call)
	q.mu.Unlock()

	select {
	case q.Settled <- call:
	default:
	}
}

var _ event.Queue = (*MockQueue)(nil)
