package types

import "fmt"

// TaskKind discriminates the closed set of task variants a worker can
// receive. Code handling tasks should switch exhaustively over the kinds
// rather than probing optional fields.
type TaskKind int

const (
	// TaskSinglePoint is an interactive request for one origin, answered
	// synchronously with an encoded travel-time surface.
	TaskSinglePoint TaskKind = iota + 1

	// TaskRegional is one origin of a multi-origin job; its result is
	// published to the result channel for asynchronous assembly.
	TaskRegional
)

// String returns a human-readable task kind name.
func (k TaskKind) String() string {
	switch k {
	case TaskSinglePoint:
		return "single-point"
	case TaskRegional:
		return "regional"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// FaultMode selects how an intentional failure is injected on the worker.
type FaultMode string

const (
	// FaultDropTask silently discards the task before computing, producing no
	// result. Exercises redelivery-timeout detection upstream.
	FaultDropTask FaultMode = "dropTask"

	// FaultError fails the task with an error after computing. Exercises
	// per-task retry without losing the rest of the job.
	FaultError FaultMode = "error"

	// FaultExit terminates the whole worker process after computing.
	// Exercises worker-loss detection and re-dispatch to another worker.
	FaultExit FaultMode = "exit"
)

// FaultSpec configures deliberate fault injection for a task. It is only ever
// attached to tasks during recovery testing; a nil FaultSpec disables
// injection entirely.
//
// Failures are probabilistic rather than keyed to fixed task indices: the same
// task may be redelivered and reprocessed after a prior injected failure, and
// a deterministic "task 7 always fails" rule would fail that task forever,
// never letting the system demonstrate recovery.
type FaultSpec struct {
	// Mode selects the failure behavior.
	Mode FaultMode `json:"mode"`

	// StartingAtTask is the task index below which no failures are injected.
	StartingAtTask int `json:"startingAtTask"`

	// FailurePercent is the probability, in whole percent, that an eligible
	// task fails.
	FailurePercent int `json:"failurePercent"`
}

// Task is the unit of work dispatched to a compute worker, a tagged union
// over the closed set of task kinds.
type Task struct {
	// Kind discriminates the variant. Required.
	Kind TaskKind `json:"kind"`

	// JobID identifies the owning job. Required for regional tasks.
	JobID string `json:"jobId,omitempty"`

	// TaskID is the origin index within the job, in [0, N). Regional only.
	TaskID int `json:"taskId,omitempty"`

	// NetworkID names the precomputed network data the task needs.
	NetworkID string `json:"networkId"`

	// Origin is the source cell the task computes from.
	Origin Cell `json:"origin"`

	// Fault optionally enables intentional failures for recovery testing.
	// Never set in normal operation.
	Fault *FaultSpec `json:"injectFault,omitempty"`
}
