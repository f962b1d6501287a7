package assembly

import "github.com/conveyal/r5-sub005/types"

// Re-export core types from the types subpackage.
//
// Type aliases give users a convenient assembly.Job, assembly.Logger, etc.
// while letting internal packages depend on types without importing the root
// package, which would cycle.
type (
	Job          = types.Job
	Cell         = types.Cell
	OriginResult = types.OriginResult
	Task         = types.Task
	TaskKind     = types.TaskKind
	FaultSpec    = types.FaultSpec
	JobStatus    = types.JobStatus
)

// Re-export interfaces from the types subpackage for convenience.
type (
	ResultChannel    = types.ResultChannel
	Message          = types.Message
	BlobStore        = types.BlobStore
	StatusStore      = types.StatusStore
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export task kind constants.
const (
	TaskSinglePoint = types.TaskSinglePoint
	TaskRegional    = types.TaskRegional
)

// AttrJobID is the message attribute naming the owning job.
const AttrJobID = types.AttrJobID
