package types

// MetricsCollector receives operational metrics from the registry, assembler,
// and consumer. A no-op implementation and a Prometheus-backed implementation
// ship in internal/metrics.
type MetricsCollector interface {
	// RecordResultReceived counts a distinct origin result accepted into a grid.
	RecordResultReceived(jobID string)

	// RecordDuplicateResult counts a redelivered result discarded by the
	// assembler's received-set check.
	RecordDuplicateResult(jobID string)

	// RecordOriginError counts a result delivered with the error marker set.
	RecordOriginError(jobID string)

	// RecordJobCompleted records a finalized job and its assembly duration in seconds.
	RecordJobCompleted(jobID string, seconds float64)

	// RecordUnroutableMessage counts a channel message that could not be routed,
	// labeled by reason ("malformed", "unknown-job", "retired-job").
	RecordUnroutableMessage(reason string)

	// RecordChannelError counts a transient channel connectivity failure.
	RecordChannelError()

	// SetActiveJobs reports the current number of registered assemblers.
	SetActiveJobs(n int)
}
