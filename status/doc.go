// Package status provides types.StatusStore implementations: an in-memory
// store and a MongoDB-backed store. The assembler upserts a job's progress
// record on every accepted result, so operators can observe jobs that remain
// open awaiting further results.
package status
