package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors returned by queue implementations.
var (
	// ErrQueueClosed is returned when an operation is attempted on a
	// queue that has been closed.
	ErrQueueClosed = errors.New("event queue is closed")

	// ErrQueueFull is returned when the queue cannot accept more events.
	ErrQueueFull = errors.New("event queue is full")

	// ErrUnknownHandle is returned when an Ack or NoAck refers to a
	// delivery that is not in flight, typically because it was already
	// settled once.
	ErrUnknownHandle = errors.New("unknown delivery handle")
)

// Handle identifies one specific delivery attempt of an event. It is
// only meaningful to the queue that issued it.
type Handle = uuid.UUID

// Queue is the durable, at-least-once event channel the dispatcher
// consumes. Every delivery returned by Receive must later be settled
// with exactly one Ack or NoAck using its handle.
//
// Upstream producers guarantee that a task has at most one event in
// flight until its delivery is settled; the dispatcher relies on this
// to hand one runner to concurrent handlers without further locking.
type Queue interface {
	// Receive blocks until an event is available or ctx is done.
	Receive(ctx context.Context) (Handle, *Event, error)

	// Ack permanently removes the delivered event, marking it handled.
	Ack(ctx context.Context, h Handle) error

	// NoAck returns the delivered event for redelivery. The queue adds
	// no delay of its own; callers time their own backoff beforehand.
	NoAck(ctx context.Context, h Handle) error
}

// Producer is the write side of a queue, used by runners that emit
// follow-up events and by tests.
type Producer interface {
	// Put enqueues an event for delivery.
	Put(ctx context.Context, ev *Event) error
}
