package task

import "sync"

// registry maps task identifiers to live runner instances. The
// dispatch loop is the only caller of get and put, so construction of
// a runner can never race with itself; remove is called from handler
// goroutines and therefore everything is guarded by a mutex.
type registry struct {
	mu      sync.Mutex
	runners map[int64]Runner
}

func newRegistry() *registry {
	return &registry{runners: make(map[int64]Runner)}
}

func (r *registry) get(taskID int64) (Runner, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runner, ok := r.runners[taskID]
	return runner, ok
}

func (r *registry) put(taskID int64, runner Runner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[taskID] = runner
}

// remove deletes the entry for taskID only if it still holds runner,
// and reports whether anything was removed. A stale remove is a no-op:
// it can neither fail nor evict a newer runner that replaced the one
// the caller finished with.
func (r *registry) remove(taskID int64, runner Runner) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.runners[taskID]
	if !ok || current != runner {
		return false
	}
	delete(r.runners, taskID)
	return true
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runners)
}
