package types

import "fmt"

// OriginResult is the work product for one origin of a job: the numeric
// values to slot into the origin's grid cell, plus identifying metadata.
//
// Exactly one of TravelTimeValues or AccessibilityValues is set, depending on
// what the job records. A result with Error set is still delivered and still
// counts toward job completion, so one failed origin cannot hang the whole
// job; its cells keep the unreachable sentinel.
//
// An OriginResult is immutable once constructed. The channel may deliver it
// more than once; the assembler consumes it logically once.
type OriginResult struct {
	// JobID identifies the owning job.
	JobID string `json:"jobId"`

	// TaskID is the origin index within the job, in [0, N).
	TaskID int `json:"taskId"`

	// TravelTimeValues holds travel times as [sample][target].
	TravelTimeValues [][]int32 `json:"travelTimeValues,omitempty"`

	// AccessibilityValues holds accessibility figures as
	// [destinationSet][percentile][cutoff].
	AccessibilityValues [][][]int32 `json:"accessibilityValues,omitempty"`

	// Error is set when the origin's computation failed on the worker.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the origin's computation failed on the worker side.
func (r *OriginResult) Failed() bool {
	return r.Error != ""
}

// CellValues flattens the result payload into the row-major value sequence
// written into the origin's grid cell. The caller checks the length against
// the job's ValuesPerCell.
func (r *OriginResult) CellValues() []int32 {
	if r.AccessibilityValues != nil {
		var n int
		for _, dest := range r.AccessibilityValues {
			for _, pct := range dest {
				n += len(pct)
			}
		}
		out := make([]int32, 0, n)
		for _, dest := range r.AccessibilityValues {
			for _, pct := range dest {
				out = append(out, pct...)
			}
		}

		return out
	}

	var n int
	for _, sample := range r.TravelTimeValues {
		n += len(sample)
	}
	out := make([]int32, 0, n)
	for _, sample := range r.TravelTimeValues {
		out = append(out, sample...)
	}

	return out
}

// Validate checks that the result identifies a task within the given job and
// carries the expected number of values.
func (r *OriginResult) Validate(job *Job) error {
	if r.JobID != job.ID {
		return fmt.Errorf("%w: result for job %s handled by job %s", ErrMalformedResult, r.JobID, job.ID)
	}
	if r.TaskID < 0 || r.TaskID >= job.TaskCount() {
		return fmt.Errorf("%w: task %d of %d in job %s", ErrTaskOutOfRange, r.TaskID, job.TaskCount(), job.ID)
	}
	if r.Failed() {
		// Failed origins carry no values; their cells keep the sentinel.
		return nil
	}
	if got := len(r.CellValues()); got != job.ValuesPerCell {
		return fmt.Errorf("%w: got %d values, job %s expects %d", ErrDimensionMismatch, got, job.ID, job.ValuesPerCell)
	}

	return nil
}
