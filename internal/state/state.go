package state

import (
	"context"
	"errors"
	"time"
)

// ErrTaskNotFound is returned when no state exists for the requested task.
var ErrTaskNotFound = errors.New("task state not found")

// Status represents the current lifecycle position of a task.
type Status string

// Possible task status values
const (
	StatusPending          Status = "pending"
	StatusStarted          Status = "started"
	StatusResultReady      Status = "result-ready"
	StatusCommitmentsReady Status = "commitments-ready"
	StatusSuccess          Status = "success"
	StatusAborted          Status = "aborted"
)

// TaskState is the persisted progress of one task.
type TaskState struct {
	TaskID    int64
	Status    Status
	Files     []string
	Round     int
	UpdatedAt time.Time
}

// Cache stores task state keyed by task identifier.
type Cache interface {
	// Load returns the state for taskID, or ErrTaskNotFound.
	Load(ctx context.Context, taskID int64) (*TaskState, error)

	// Dump persists the given state, overwriting any previous state
	// for the same task.
	Dump(ctx context.Context, ts *TaskState) error

	// Has reports whether state exists for taskID.
	Has(ctx context.Context, taskID int64) (bool, error)

	// Delete removes the state for taskID. Deleting absent state is
	// not an error.
	Delete(ctx context.Context, taskID int64) error
}
