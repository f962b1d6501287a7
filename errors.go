package assembly

import (
	"github.com/conveyal/r5-sub005/grid"
	"github.com/conveyal/r5-sub005/types"
)

// Sentinel errors re-exported at the root for callers that prefer a single
// import. See types and grid for the full per-component groupings.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrInvalidJob is returned when a job definition fails validation.
	ErrInvalidJob = types.ErrInvalidJob

	// ErrJobExists is returned when registering an already-registered job ID.
	ErrJobExists = types.ErrJobExists

	// ErrJobNotFound is returned for operations on jobs that were never registered.
	ErrJobNotFound = types.ErrJobNotFound

	// ErrJobRetired is returned for operations on jobs that already completed
	// or were cancelled.
	ErrJobRetired = types.ErrJobRetired

	// ErrJobFailed is returned when a job could not finalize its artifact.
	ErrJobFailed = types.ErrJobFailed

	// ErrTaskOutOfRange is returned for results naming a task outside the
	// owning job's task range.
	ErrTaskOutOfRange = types.ErrTaskOutOfRange

	// ErrDimensionMismatch is returned for results whose value count does not
	// match the job's ValuesPerCell.
	ErrDimensionMismatch = types.ErrDimensionMismatch

	// ErrMalformedResult is returned for results that cannot be attributed to
	// the job that received them.
	ErrMalformedResult = types.ErrMalformedResult

	// ErrChannelClosed is returned by channel operations after shutdown.
	ErrChannelClosed = types.ErrChannelClosed

	// ErrBlobNotFound is returned when a requested artifact does not exist.
	ErrBlobNotFound = types.ErrBlobNotFound

	// ErrFormat is returned for malformed binary grid input or output.
	ErrFormat = grid.ErrFormat

	// ErrCapacityExceeded is returned when a grid would exceed 31-bit
	// addressable space; jobs are rejected before registration.
	ErrCapacityExceeded = grid.ErrCapacityExceeded
)
