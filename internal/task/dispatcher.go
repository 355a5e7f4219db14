package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashgrid/tasknode/internal/event"
	"github.com/hashgrid/tasknode/internal/state"
)

// State is the lifecycle state of a Dispatcher.
type State int32

// Dispatcher lifecycle states.
const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "invalid"
	}
}

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	// RetryDelay is how long to wait before returning a retryable
	// failure's event for redelivery
	RetryDelay time.Duration

	// TaskName is the task kind handed to runner construction
	TaskName string

	// Distributed is threaded through to runner construction
	Distributed bool

	// AckTimeout bounds each queue-facing settlement (ack/no-ack).
	// Settlements run detached from handler cancellation so the queue
	// always learns a definite outcome during shutdown.
	AckTimeout time.Duration

	// ShutdownGrace is how long Start waits for in-flight handlers to
	// settle after the loop exits
	ShutdownGrace time.Duration
}

// DefaultDispatcherConfig returns a DispatcherConfig with reasonable defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		RetryDelay:    5 * time.Second,
		TaskName:      "sd_lora_inference",
		AckTimeout:    5 * time.Second,
		ShutdownGrace: 10 * time.Second,
	}
}

// Dispatcher is the dispatch core's control loop. It consumes events
// from the queue, maintains the task-to-runner registry, and launches
// one handler goroutine per delivery.
type Dispatcher struct {
	queue   event.Queue
	cache   state.Cache
	factory RunnerFactory
	config  DispatcherConfig
	logger  *slog.Logger

	runners *registry
	state   atomic.Int32
	wg      sync.WaitGroup

	mu       sync.Mutex
	cancel   context.CancelFunc
	fatalErr error
}

// NewDispatcher creates a Dispatcher. Zero config fields fall back to
// the defaults from DefaultDispatcherConfig.
func NewDispatcher(
	queue event.Queue,
	cache state.Cache,
	factory RunnerFactory,
	config DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	defaults := DefaultDispatcherConfig()
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.TaskName == "" {
		config.TaskName = defaults.TaskName
	}
	if config.AckTimeout <= 0 {
		config.AckTimeout = defaults.AckTimeout
	}
	if config.ShutdownGrace <= 0 {
		config.ShutdownGrace = defaults.ShutdownGrace
	}

	return &Dispatcher{
		queue:   queue,
		cache:   cache,
		factory: factory,
		config:  config,
		logger:  logger.With("component", "dispatcher"),
		runners: newRegistry(),
	}
}

// State returns the dispatcher's lifecycle state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// TaskName returns the configured task kind.
func (d *Dispatcher) TaskName() string {
	return d.config.TaskName
}

// RunnerCount returns the number of registered runners.
func (d *Dispatcher) RunnerCount() int {
	return d.runners.len()
}

// Start runs the dispatch loop until Stop is called, ctx is cancelled,
// or an unrecoverable error occurs. Calling Start while the dispatcher
// is not stopped is a programming error and panics.
func (d *Dispatcher) Start(ctx context.Context) error {
	if !d.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		panic("task: dispatcher already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.fatalErr = nil
	d.mu.Unlock()

	// A Stop that raced Start between the state flip and the cancel
	// installation found no cancel func to call; honor it here.
	if d.State() == StateStopping {
		cancel()
	}

	d.logger.Info("dispatcher started",
		"task_name", d.config.TaskName,
		"distributed", d.config.Distributed,
		"retry_delay", d.config.RetryDelay)

	err := d.run(loopCtx)

	d.state.Store(int32(StateStopping))
	cancel()
	d.waitHandlers()

	d.mu.Lock()
	d.cancel = nil
	fatal := d.fatalErr
	d.fatalErr = nil
	d.mu.Unlock()
	d.state.Store(int32(StateStopped))

	if err == nil {
		err = fatal
	}
	if err != nil {
		d.logger.Error("dispatcher stopped with error", "error", err)
		return err
	}
	d.logger.Info("dispatcher stopped")
	return nil
}

// Stop requests a graceful shutdown: the loop stops receiving and all
// in-flight handlers are cancelled. Idempotent and safe to call from
// any goroutine, including before or after Start has exited.
func (d *Dispatcher) Stop() {
	if d.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		d.logger.Info("dispatcher stop requested")
	}

	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// run is the dispatch loop. Runner construction and registration
// happen here, never concurrently, so two back-to-back events for a
// new task cannot create two runners.
func (d *Dispatcher) run(ctx context.Context) error {
	for {
		handle, ev, err := d.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive event: %w", err)
		}

		runner, ok := d.runners.get(ev.TaskID)
		if !ok {
			runner, err = d.newRunner(ctx, ev.TaskID)
			if err != nil {
				// The delivery survives the failure: settle it before
				// reacting to the fault.
				if nerr := d.finalize(func(fctx context.Context) error {
					return d.queue.NoAck(fctx, handle)
				}); nerr != nil {
					d.logger.Error("failed to return event after runner init failure",
						"task_id", ev.TaskID, "error", nerr)
				}
				if ctx.Err() != nil {
					// Init was interrupted by shutdown; the delivery is
					// already settled, so this is a normal stop.
					return nil
				}
				if classify(err) == outcomeRetry {
					// Redelivery will retry construction; nothing was
					// registered, so the loop can keep consuming.
					d.logger.Error("runner init failed, event returned for retry",
						"task_id", ev.TaskID, "error", err)
					continue
				}
				return fmt.Errorf("initialize runner for task %d: %w", ev.TaskID, err)
			}
			d.runners.put(ev.TaskID, runner)
			d.logger.Debug("created task runner", "task_id", ev.TaskID)
		}

		d.wg.Add(1)
		go d.handleEvent(ctx, handle, ev, runner)
	}
}

func (d *Dispatcher) newRunner(ctx context.Context, taskID int64) (Runner, error) {
	runner, err := d.factory(RunnerDeps{
		TaskID:      taskID,
		StateCache:  d.cache,
		Queue:       d.queue,
		TaskName:    d.config.TaskName,
		Distributed: d.config.Distributed,
	})
	if err != nil {
		return nil, fmt.Errorf("construct runner: %w", err)
	}
	if err := runner.Init(ctx); err != nil {
		return nil, fmt.Errorf("init runner: %w", err)
	}
	return runner, nil
}

// handleEvent drives exactly one settlement for a delivery: ack,
// no-ack, or no-ack after backoff, adjusting the registry as needed.
func (d *Dispatcher) handleEvent(ctx context.Context, handle event.Handle, ev *event.Event, runner Runner) {
	defer d.wg.Done()

	logger := d.logger.With(
		"task_id", ev.TaskID,
		"kind", ev.Kind,
		"event_id", ev.ID,
	)

	finished, err := runner.ProcessEvent(ctx, ev)

	switch classify(err) {
	case outcomeSuccess:
		ferr := d.finalize(func(fctx context.Context) error {
			if finished {
				// Remove before acking so a late event for this task
				// can never observe a finished runner still registered.
				d.runners.remove(ev.TaskID, runner)
				logger.Debug("task finished")
			}
			return d.queue.Ack(fctx, handle)
		})
		if ferr != nil {
			d.fatalFinalize(logger, "ack", ferr)
			return
		}
		logger.Debug("event processed")

	case outcomeCancelled:
		// A control signal, not a failure: preserve the delivery, keep
		// the runner, and let the stop sequence proceed.
		if ferr := d.finalize(func(fctx context.Context) error {
			return d.queue.NoAck(fctx, handle)
		}); ferr != nil {
			d.fatalFinalize(logger, "no-ack on cancel", ferr)
			return
		}
		logger.Debug("event returned on cancellation")

	case outcomeRetry:
		logger.Error("event processing failed, will retry", "error", err)
		// The backoff itself stays cancellable so a retry in progress
		// cannot block shutdown; the settlement after it does not.
		select {
		case <-time.After(d.config.RetryDelay):
		case <-ctx.Done():
		}
		if ferr := d.finalize(func(fctx context.Context) error {
			return d.queue.NoAck(fctx, handle)
		}); ferr != nil {
			d.fatalFinalize(logger, "no-ack on retry", ferr)
			return
		}
		logger.Debug("event returned for retry")

	case outcomeTerminal:
		logger.Error("event processing failed permanently", "error", err)
		ferr := d.finalize(func(fctx context.Context) error {
			if err := d.queue.Ack(fctx, handle); err != nil {
				return err
			}
			d.runners.remove(ev.TaskID, runner)
			return nil
		})
		if ferr != nil {
			d.fatalFinalize(logger, "ack on terminal failure", ferr)
			return
		}
		logger.Debug("task finished with error")

	case outcomeUnknown:
		// Unknown failure modes must never silently drop work:
		// redeliver immediately and keep the runner.
		logger.Error("unexpected error processing event", "error", err)
		if ferr := d.finalize(func(fctx context.Context) error {
			return d.queue.NoAck(fctx, handle)
		}); ferr != nil {
			d.fatalFinalize(logger, "no-ack on unknown failure", ferr)
			return
		}
	}
}

// finalize runs a queue-facing settlement under its own short deadline,
// detached from handler cancellation, so a shutdown in progress cannot
// leave a delivery in limbo.
func (d *Dispatcher) finalize(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.AckTimeout)
	defer cancel()
	return fn(ctx)
}

// fatalFinalize records a failed settlement and stops the dispatcher.
// A stuck or failed ack/no-ack means the queue's view of the delivery
// is unknown, which is not something to log and carry on from.
func (d *Dispatcher) fatalFinalize(logger *slog.Logger, op string, err error) {
	logger.Error("settlement failed, stopping dispatcher", "op", op, "error", err)
	d.mu.Lock()
	if d.fatalErr == nil {
		d.fatalErr = fmt.Errorf("finalize %s: %w", op, err)
	}
	d.mu.Unlock()
	d.Stop()
}

func (d *Dispatcher) waitHandlers() {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d.config.ShutdownGrace):
		d.logger.Warn("shutdown grace elapsed with handlers still in flight")
	}
}
