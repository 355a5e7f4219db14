package task

import (
	"context"
	"sync"

	"github.com/hashgrid/tasknode/internal/event"
)

// MockRunner is a simple Runner implementation for testing. Behavior
// is customized by setting InitFn and ProcessEventFn.
type MockRunner struct {
	TaskID         int64
	InitFn         func(ctx context.Context) error
	ProcessEventFn func(ctx context.Context, ev *event.Event) (bool, error)

	mu        sync.Mutex
	initCalls int
	processed []*event.Event
}

// NewMockRunner creates a MockRunner whose Init succeeds and whose
// ProcessEvent reports the task unfinished.
func NewMockRunner(taskID int64) *MockRunner {
	return &MockRunner{TaskID: taskID}
}

// Init runs InitFn if set and counts the call.
func (r *MockRunner) Init(ctx context.Context) error {
	r.mu.Lock()
	r.initCalls++
	r.mu.Unlock()

	if r.InitFn != nil {
		return r.InitFn(ctx)
	}
	return nil
}

// ProcessEvent runs ProcessEventFn if set and records the event.
func (r *MockRunner) ProcessEvent(ctx context.Context, ev *event.Event) (bool, error) {
	r.mu.Lock()
	r.processed = append(r.processed, ev)
	r.mu.Unlock()

	if r.ProcessEventFn != nil {
		return r.ProcessEventFn(ctx, ev)
	}
	return false, nil
}

// InitCalls returns how many times Init was invoked.
func (r *MockRunner) InitCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initCalls
}

// Processed returns the events seen so far.
func (r *MockRunner) Processed() []*event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*event.Event(nil), r.processed...)
}

var _ Runner = (*MockRunner)(nil)
