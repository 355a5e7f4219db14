package task

import "sync"

var (
	defaultMu         sync.Mutex
	defaultDispatcher *Dispatcher
)

// SetDefault installs d as the process-wide dispatcher instance.
// In-repo collaborators take the dispatcher by injection; this slot
// exists for collaborators outside the dependency graph, such as
// signal handlers. Installing twice, or installing nil, is a
// programming error and panics.
func SetDefault(d *Dispatcher) {
	if d == nil {
		panic("task: SetDefault called with nil dispatcher")
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDispatcher != nil {
		panic("task: default dispatcher already set")
	}
	defaultDispatcher = d
}

// Default returns the process-wide dispatcher. Reading the slot before
// SetDefault is a programming error and panics.
func Default() *Dispatcher {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDispatcher == nil {
		panic("task: default dispatcher has not been set")
	}
	return defaultDispatcher
}
