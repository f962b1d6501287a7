package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/conveyal/r5-sub005/cache"
	"github.com/conveyal/r5-sub005/grid"
	"github.com/conveyal/r5-sub005/types"
)

// SinglePointStatus is the outcome category of a single-point request.
type SinglePointStatus int

const (
	// SinglePointReady means the surface was computed; Grid holds it.
	SinglePointReady SinglePointStatus = iota + 1

	// SinglePointNotReady means the network data is still loading. The caller
	// should retry after RetryAfter.
	SinglePointNotReady

	// SinglePointError means the request failed for good; Err explains why.
	SinglePointError
)

// String returns a human-readable status name.
func (s SinglePointStatus) String() string {
	switch s {
	case SinglePointReady:
		return "ready"
	case SinglePointNotReady:
		return "not-ready"
	case SinglePointError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// SinglePointResult is the three-way outcome of a single-point task: a
// computed surface, a retry hint while data loads, or a hard error. Exactly
// one branch is populated, selected by Status.
type SinglePointResult struct {
	Status SinglePointStatus

	// Grid is the encoded travel-time surface. Set only for SinglePointReady.
	Grid []byte

	// RetryAfter hints when to re-poll. Set only for SinglePointNotReady.
	RetryAfter time.Duration

	// Err is the failure cause. Set only for SinglePointError.
	Err error
}

// HandleSinglePointTask answers an interactive request for one origin.
//
// Unlike regional tasks, the caller is waiting: if the network data is not
// built yet the method returns immediately with a not-ready outcome and a
// retry hint instead of blocking for what may be minutes.
func (w *Worker) HandleSinglePointTask(ctx context.Context, task *types.Task) SinglePointResult {
	switch task.Kind {
	case types.TaskSinglePoint:
	case types.TaskRegional:
		return SinglePointResult{
			Status: SinglePointError,
			Err:    fmt.Errorf("%w: regional task in single-point handler", ErrWrongTaskKind),
		}
	default:
		return SinglePointResult{
			Status: SinglePointError,
			Err:    fmt.Errorf("%w: %s", ErrWrongTaskKind, task.Kind),
		}
	}

	if w.networks == nil {
		return SinglePointResult{
			Status: SinglePointError,
			Err:    fmt.Errorf("no network preloader configured"),
		}
	}

	status, err := w.networks.Status(task.NetworkID)
	switch status {
	case cache.StatusWaiting, cache.StatusBuilding:
		w.logger.Debug("network still loading", "networkId", task.NetworkID, "status", status)

		return SinglePointResult{Status: SinglePointNotReady, RetryAfter: w.retryAfter}
	case cache.StatusError:
		return SinglePointResult{
			Status: SinglePointError,
			Err:    fmt.Errorf("loading network %s: %w", task.NetworkID, err),
		}
	case cache.StatusPresent:
	}

	header, values, err := w.computer.ComputeSurface(ctx, task)
	if err != nil {
		return SinglePointResult{
			Status: SinglePointError,
			Err:    fmt.Errorf("computing surface for network %s: %w", task.NetworkID, err),
		}
	}

	encoded, err := grid.Encode(header, values)
	if err != nil {
		return SinglePointResult{
			Status: SinglePointError,
			Err:    fmt.Errorf("encoding surface for network %s: %w", task.NetworkID, err),
		}
	}

	return SinglePointResult{Status: SinglePointReady, Grid: encoded}
}
