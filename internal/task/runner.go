package task

import (
	"context"

	"github.com/hashgrid/tasknode/internal/event"
	"github.com/hashgrid/tasknode/internal/state"
)

// Runner is the per-task state machine that consumes lifecycle events
// for one task until it reaches a terminal state.
// Version: 1.0
type Runner interface {
	// Init performs one-time setup for the runner instance. It is
	// called once, on the dispatch loop, before the runner receives
	// any event. Implementations must be idempotent.
	Init(ctx context.Context) error

	// ProcessEvent consumes one event, advances the task state, and
	// reports whether the task reached a terminal state. Failures are
	// classified with Retry or Permanent; anything else is treated as
	// an unknown transient fault.
	ProcessEvent(ctx context.Context, ev *event.Event) (finished bool, err error)
}

// RunnerDeps carries everything a runner needs at construction time.
// The state cache and queue are threaded through untouched; the
// dispatch core never uses them itself.
type RunnerDeps struct {
	TaskID      int64
	StateCache  state.Cache
	Queue       event.Queue
	TaskName    string
	Distributed bool
}

// RunnerFactory constructs the runner for a task the dispatcher has
// not seen before.
type RunnerFactory func(deps RunnerDeps) (Runner, error)
