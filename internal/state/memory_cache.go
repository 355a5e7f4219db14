package state

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache backed by a map. States are
// copied on the way in and out so callers never alias cache internals.
type MemoryCache struct {
	mu     sync.RWMutex
	states map[int64]*TaskState
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		states: make(map[int64]*TaskState),
	}
}

// Load returns the state for taskID, or ErrTaskNotFound.
func (c *MemoryCache) Load(ctx context.Context, taskID int64) (*TaskState, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ts, ok := c.states[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: task %d", ErrTaskNotFound, taskID)
	}
	return copyState(ts), nil
}

// Dump persists the given state, stamping UpdatedAt.
func (c *MemoryCache) Dump(ctx context.Context, ts *TaskState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := copyState(ts)
	stored.UpdatedAt = time.Now().UTC()
	c.states[ts.TaskID] = stored
	return nil
}

// Has reports whether state exists for taskID.
func (c *MemoryCache) Has(ctx context.Context, taskID int64) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.states[taskID]
	return ok, nil
}

// Delete removes the state for taskID.
func (c *MemoryCache) Delete(ctx context.Context, taskID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.states, taskID)
	return nil
}

func copyState(ts *TaskState) *TaskState {
	cp := *ts
	cp.Files = append([]string(nil), ts.Files...)
	return &cp
}

var _ Cache = (*MemoryCache)(nil)
