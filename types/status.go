package types

import "context"

// JobStatus is the externally queryable progress record for one job:
// "received N of M", how many origins failed, and whether the output artifact
// has been published.
type JobStatus struct {
	JobID    string `json:"jobId" bson:"jobId"`
	Received int    `json:"received" bson:"received"`
	Total    int    `json:"total" bson:"total"`
	Errored  int    `json:"errored" bson:"errored"`
	Complete bool   `json:"complete" bson:"complete"`

	// Failed marks a job retired without publishing an artifact (finalization
	// error). Rerunning the job is the caller's decision.
	Failed bool `json:"failed,omitempty" bson:"failed,omitempty"`
}

// StatusStore persists job progress so operators can observe jobs that remain
// open awaiting further results. The assembler is the single writer per job.
//
// Implementations in the status package cover in-memory and MongoDB backends.
type StatusStore interface {
	// Update upserts the status record for status.JobID.
	Update(ctx context.Context, status JobStatus) error

	// Get returns the status record for jobID.
	// Returns ErrJobNotFound if no record exists.
	Get(ctx context.Context, jobID string) (JobStatus, error)
}
