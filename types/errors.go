package types

import "errors"

// Sentinel errors for the assembly library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// Components wrap external errors with context using fmt.Errorf("...: %w", err)
// and reserve these sentinels for known, branchable conditions.

// Job and registry errors.
var (
	// ErrInvalidJob is returned when a job definition fails validation.
	ErrInvalidJob = errors.New("invalid job definition")

	// ErrJobExists is returned when registering a job ID that already has an assembler.
	ErrJobExists = errors.New("job already registered")

	// ErrJobNotFound is returned when an operation references a job ID with no
	// registered assembler and no record of prior retirement.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobRetired is returned when an operation references a job that has
	// already completed or been cancelled.
	ErrJobRetired = errors.New("job already retired")
)

// Result and assembly errors.
var (
	// ErrTaskOutOfRange is returned when a result's task ID is outside [0, N).
	ErrTaskOutOfRange = errors.New("task ID out of range")

	// ErrDimensionMismatch is returned when a result carries a different number
	// of values per origin than the job's grid expects.
	ErrDimensionMismatch = errors.New("result dimensions do not match job")

	// ErrJobFailed is returned when an assembler could not finalize its output
	// artifact. The job is retired and must be rerun by the caller.
	ErrJobFailed = errors.New("job failed during finalization")
)

// Channel and consumer errors.
var (
	// ErrMissingJobAttribute is returned for channel messages that lack the job
	// attribute. Such messages are permanently malformed and never retried.
	ErrMissingJobAttribute = errors.New("message missing job attribute")

	// ErrMalformedResult is returned when a message body cannot be decoded as
	// an OriginResult.
	ErrMalformedResult = errors.New("malformed result payload")

	// ErrChannelClosed is returned when fetching from a channel that has been closed.
	ErrChannelClosed = errors.New("result channel closed")
)

// Blob store errors.
var (
	// ErrBlobNotFound is returned when a requested key does not exist in the store.
	ErrBlobNotFound = errors.New("blob not found")
)

// Configuration errors.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)
