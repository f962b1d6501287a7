package chaos

import (
	"errors"
	rand "math/rand/v2"
	"os"

	"github.com/conveyal/r5-sub005/internal/logging"
	"github.com/conveyal/r5-sub005/types"
)

// ErrInjected is the error reported for intentionally failed tasks.
var ErrInjected = errors.New("intentional failure for testing purposes")

// Injector decides, per task index, whether to inject the configured failure.
// All methods are safe on a nil *Injector, which never fails anything.
type Injector struct {
	spec   types.FaultSpec
	logger types.Logger

	// draw returns a uniform int in [0, n). Replaceable in tests.
	draw func(n int) int
	// exit terminates the process. Replaceable in tests.
	exit func(code int)
}

// Option configures an Injector.
type Option func(*Injector)

// WithLogger sets the logger used when failures fire.
func WithLogger(logger types.Logger) Option {
	return func(in *Injector) {
		in.logger = logger
	}
}

// WithDraw replaces the uniform random draw, for deterministic tests.
func WithDraw(draw func(n int) int) Option {
	return func(in *Injector) {
		in.draw = draw
	}
}

// WithExit replaces os.Exit, so tests of the exit mode can observe the call
// instead of dying.
func WithExit(exit func(code int)) Option {
	return func(in *Injector) {
		in.exit = exit
	}
}

// New builds an Injector from a task's FaultSpec. A nil spec yields a nil
// Injector, which is valid and inert.
func New(spec *types.FaultSpec, opts ...Option) *Injector {
	if spec == nil {
		return nil
	}

	in := &Injector{
		spec:   *spec,
		logger: logging.NewNop(),
		draw:   rand.IntN,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(in)
	}

	return in
}

// shouldFail reports whether task index i draws a failure: eligible iff
// i >= StartingAtTask, then failing with probability FailurePercent/100.
func (in *Injector) shouldFail(taskIndex int) bool {
	return taskIndex >= in.spec.StartingAtTask && in.draw(100) < in.spec.FailurePercent
}

// ShouldDropBeforeCompute reports whether to discard the task before any
// computation, producing no result at all. The channel's redelivery timeout
// is what eventually recovers the task.
func (in *Injector) ShouldDropBeforeCompute(taskIndex int) bool {
	if in == nil || in.spec.Mode != types.FaultDropTask {
		return false
	}
	if !in.shouldFail(taskIndex) {
		return false
	}
	in.logger.Warn("intentionally dropping task for testing purposes", "taskId", taskIndex)

	return true
}

// AfterCompute injects post-computation failures. In error mode it returns
// ErrInjected for the caller to surface as a per-task processing failure. In
// exit mode it terminates the worker process.
func (in *Injector) AfterCompute(taskIndex int) error {
	if in == nil {
		return nil
	}
	switch in.spec.Mode {
	case types.FaultError:
		if in.shouldFail(taskIndex) {
			in.logger.Warn("intentionally failing task for testing purposes", "taskId", taskIndex)

			return ErrInjected
		}
	case types.FaultExit:
		if in.shouldFail(taskIndex) {
			in.logger.Warn("intentionally exiting worker process for testing purposes", "taskId", taskIndex)
			in.exit(0)
		}
	case types.FaultDropTask:
		// Handled before compute.
	}

	return nil
}
