package task

import (
	"context"
	"errors"
	"fmt"
)

// Error is a classified task failure reported by a runner. Retryable
// failures mean the same event should be redelivered after the
// configured backoff; non-retryable failures end the task permanently.
type Error struct {
	TaskID    int64
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Retryable {
		return fmt.Sprintf("task %d: retryable: %v", e.TaskID, e.Err)
	}
	return fmt.Sprintf("task %d: permanent: %v", e.TaskID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retry wraps err as a retryable task failure.
func Retry(taskID int64, err error) *Error {
	return &Error{TaskID: taskID, Retryable: true, Err: err}
}

// Permanent wraps err as a non-retryable task failure.
func Permanent(taskID int64, err error) *Error {
	return &Error{TaskID: taskID, Retryable: false, Err: err}
}

// outcome is the exhaustive classification of one ProcessEvent result.
// The event handler runs a single switch over it rather than chaining
// type tests at each settlement site.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeCancelled
	outcomeRetry
	outcomeTerminal
	outcomeUnknown
)

func (o outcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeCancelled:
		return "cancelled"
	case outcomeRetry:
		return "retry"
	case outcomeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// classify maps a ProcessEvent error to its outcome. Cancellation is a
// control signal, not a failure; anything outside *Error and
// cancellation lands in the unknown bucket so it degrades to
// redeliver-and-keep-trying instead of dropping work.
func classify(err error) outcome {
	if err == nil {
		return outcomeSuccess
	}
	if errors.Is(err, context.Canceled) {
		return outcomeCancelled
	}
	var terr *Error
	if errors.As(err, &terr) {
		if terr.Retryable {
			return outcomeRetry
		}
		return outcomeTerminal
	}
	return outcomeUnknown
}
