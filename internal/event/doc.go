// Package event defines the task lifecycle event model and the durable
// event queue boundary the dispatcher consumes. Deliveries are
// at-least-once: every received event must be settled with exactly one
// Ack or NoAck against its delivery handle.
package event
