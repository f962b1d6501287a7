package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/conveyal/r5-sub005/cache"
	"github.com/conveyal/r5-sub005/chaos"
	"github.com/conveyal/r5-sub005/grid"
	"github.com/conveyal/r5-sub005/internal/logging"
	"github.com/conveyal/r5-sub005/types"
)

// ErrWrongTaskKind is returned when a task reaches a handler for a different
// task kind.
var ErrWrongTaskKind = errors.New("wrong task kind")

// Computer runs the actual routing computation for one origin. Implementations
// are expected to be safe for concurrent use.
type Computer interface {
	// ComputeOrigin computes the result values for one origin of a regional
	// job.
	ComputeOrigin(ctx context.Context, task *types.Task) (*types.OriginResult, error)

	// ComputeSurface computes a full travel-time surface for an interactive
	// single-point task.
	ComputeSurface(ctx context.Context, task *types.Task) (grid.Header, []int32, error)
}

// Preloader reports whether the network data a task needs is ready. A
// cache.Loader keyed by network ID satisfies it.
type Preloader interface {
	Status(networkID string) (cache.Status, error)
}

// Worker processes compute tasks, publishing regional results to the result
// channel and answering single-point tasks synchronously.
type Worker struct {
	computer Computer
	channel  types.ResultChannel
	networks Preloader
	logger   types.Logger

	retryAfter time.Duration
	chaosOpts  []chaos.Option
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the worker's logger.
func WithLogger(logger types.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithRetryAfter sets the retry hint returned while network data is still
// loading. Default is 5 seconds.
func WithRetryAfter(d time.Duration) Option {
	return func(w *Worker) {
		w.retryAfter = d
	}
}

// WithChaosOptions forwards options to the per-task fault injectors. Tests
// use it to make the random draw and the exit call observable.
func WithChaosOptions(opts ...chaos.Option) Option {
	return func(w *Worker) {
		w.chaosOpts = opts
	}
}

// New creates a worker. The computer and channel are required; the preloader
// may be nil when single-point tasks are never handled.
func New(computer Computer, channel types.ResultChannel, networks Preloader, opts ...Option) (*Worker, error) {
	if computer == nil {
		return nil, errors.New("computer is required")
	}
	if channel == nil {
		return nil, errors.New("result channel is required")
	}

	w := &Worker{
		computer:   computer,
		channel:    channel,
		networks:   networks,
		logger:     logging.NewNop(),
		retryAfter: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// HandleRegionalTask computes one origin of a regional job and publishes the
// result to the channel.
//
// Computation errors do not fail the call: they are published as flagged
// results so the owning job can still reach completion. A hard error is
// returned only when the task never produces a publishable result, which
// leaves it unacknowledged for the channel to redeliver.
func (w *Worker) HandleRegionalTask(ctx context.Context, task *types.Task) error {
	switch task.Kind {
	case types.TaskRegional:
	case types.TaskSinglePoint:
		return fmt.Errorf("%w: single-point task in regional handler", ErrWrongTaskKind)
	default:
		return fmt.Errorf("%w: %s", ErrWrongTaskKind, task.Kind)
	}

	injector := chaos.New(task.Fault, append([]chaos.Option{chaos.WithLogger(w.logger)}, w.chaosOpts...)...)
	if injector.ShouldDropBeforeCompute(task.TaskID) {
		// Dropped on purpose: no result, no error. Redelivery recovers it.
		return nil
	}

	result, err := w.computer.ComputeOrigin(ctx, task)
	if err != nil {
		// Deliver the failure as a flagged result so the job can finish.
		w.logger.Error("origin computation failed", "jobId", task.JobID, "taskId", task.TaskID, "error", err)
		result = &types.OriginResult{JobID: task.JobID, TaskID: task.TaskID, Error: err.Error()}
	}

	if err := injector.AfterCompute(task.TaskID); err != nil {
		return fmt.Errorf("processing task %d of job %s: %w", task.TaskID, task.JobID, err)
	}

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result for task %d of job %s: %w", task.TaskID, task.JobID, err)
	}
	if err := w.channel.Publish(ctx, task.JobID, body); err != nil {
		return fmt.Errorf("publishing result for task %d of job %s: %w", task.TaskID, task.JobID, err)
	}

	return nil
}
