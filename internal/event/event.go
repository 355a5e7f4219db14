package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind identifies where in its lifecycle a task event sits.
type Kind string

// Lifecycle event kinds emitted for a compute task.
const (
	KindCreated          Kind = "created"
	KindResultReady      Kind = "result-ready"
	KindCommitmentsReady Kind = "commitments-ready"
	KindSuccess          Kind = "success"
	KindAborted          Kind = "aborted"
)

// Event is one immutable task lifecycle event. It carries the task it
// belongs to and an optional JSON payload with kind-specific data.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// TaskID identifies the task this event belongs to
	TaskID int64 `json:"task_id"`

	// Kind indicates which lifecycle transition this event represents
	Kind Kind `json:"kind"`

	// Payload contains kind-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent creates an Event for the given task with the payload
// serialized to JSON. A nil payload produces an event without one.
func NewEvent(taskID int64, kind Kind, payload interface{}) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		ID:        uuid.New(),
		TaskID:    taskID,
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
