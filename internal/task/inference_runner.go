package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashgrid/tasknode/internal/event"
	"github.com/hashgrid/tasknode/internal/state"
)

// InferenceRunner drives one inference task through its lifecycle,
// persisting every transition to the state cache so the task can be
// resumed after a restart. It sequences state only; the actual model
// execution happens elsewhere and reports back through events.
//
// In distributed mode a task must publish result commitments before it
// can succeed; in local mode success may follow the result directly.
type InferenceRunner struct {
	taskID      int64
	cache       state.Cache
	queue       event.Queue
	taskName    string
	distributed bool
	logger      *slog.Logger

	st *state.TaskState
}

// NewInferenceRunner constructs an InferenceRunner. It matches
// RunnerFactory so it can be handed to the dispatcher directly.
func NewInferenceRunner(deps RunnerDeps) (Runner, error) {
	return &InferenceRunner{
		taskID:      deps.TaskID,
		cache:       deps.StateCache,
		queue:       deps.Queue,
		taskName:    deps.TaskName,
		distributed: deps.Distributed,
		logger: slog.Default().With(
			"component", "inference_runner",
			"task_id", deps.TaskID,
		),
	}, nil
}

// Init loads persisted state for the task, creating pending state on
// first sight. Safe to call more than once.
func (r *InferenceRunner) Init(ctx context.Context) error {
	if r.st != nil {
		return nil
	}

	st, err := r.cache.Load(ctx, r.taskID)
	switch {
	case err == nil:
		r.st = st
		r.logger.Debug("resumed task state", "status", st.Status)
		return nil
	case errors.Is(err, state.ErrTaskNotFound):
		st = &state.TaskState{TaskID: r.taskID, Status: state.StatusPending}
		if err := r.cache.Dump(ctx, st); err != nil {
			return Retry(r.taskID, fmt.Errorf("persist initial state: %w", err))
		}
		r.st = st
		return nil
	default:
		return Retry(r.taskID, fmt.Errorf("load task state: %w", err))
	}
}

// ProcessEvent advances the task state machine by one event and
// reports whether the task reached a terminal state.
func (r *InferenceRunner) ProcessEvent(ctx context.Context, ev *event.Event) (bool, error) {
	switch ev.Kind {
	case event.KindCreated:
		if err := r.require(state.StatusPending, ev.Kind); err != nil {
			return false, err
		}
		return false, r.transition(ctx, state.StatusStarted)

	case event.KindResultReady:
		if err := r.require(state.StatusStarted, ev.Kind); err != nil {
			return false, err
		}
		var payload struct {
			Files []string `json:"files"`
		}
		if err := ev.UnmarshalPayload(&payload); err != nil {
			return false, Permanent(r.taskID, fmt.Errorf("decode result payload: %w", err))
		}
		r.st.Files = payload.Files
		return false, r.transition(ctx, state.StatusResultReady)

	case event.KindCommitmentsReady:
		if !r.distributed {
			return false, Permanent(r.taskID,
				fmt.Errorf("commitments event for non-distributed task"))
		}
		if err := r.require(state.StatusResultReady, ev.Kind); err != nil {
			return false, err
		}
		r.st.Round++
		return false, r.transition(ctx, state.StatusCommitmentsReady)

	case event.KindSuccess:
		want := state.StatusResultReady
		if r.distributed {
			want = state.StatusCommitmentsReady
		}
		if err := r.require(want, ev.Kind); err != nil {
			return false, err
		}
		if err := r.transition(ctx, state.StatusSuccess); err != nil {
			return false, err
		}
		return true, nil

	case event.KindAborted:
		// Abort is valid from any non-terminal state.
		if r.st.Status == state.StatusSuccess || r.st.Status == state.StatusAborted {
			return false, Permanent(r.taskID,
				fmt.Errorf("abort event for task already in status %s", r.st.Status))
		}
		if err := r.transition(ctx, state.StatusAborted); err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, Permanent(r.taskID, fmt.Errorf("unknown event kind %q", ev.Kind))
	}
}

func (r *InferenceRunner) require(want state.Status, kind event.Kind) error {
	if r.st.Status != want {
		return Permanent(r.taskID,
			fmt.Errorf("unexpected %s event in status %s", kind, r.st.Status))
	}
	return nil
}

// transition persists the new status. Cache failures are retryable:
// the event will be redelivered and the transition attempted again.
func (r *InferenceRunner) transition(ctx context.Context, next state.Status) error {
	prev := r.st.Status
	r.st.Status = next
	if err := r.cache.Dump(ctx, r.st); err != nil {
		r.st.Status = prev
		return Retry(r.taskID, fmt.Errorf("persist status %s: %w", next, err))
	}
	r.logger.Debug("task state advanced", "from", prev, "to", next)
	return nil
}

var _ Runner = (*InferenceRunner)(nil)
