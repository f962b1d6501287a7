// Package chaos injects deliberate failures into worker-side task processing
// to exercise the assembly pipeline's recovery paths: redelivery after a
// dropped task, per-task retry after a processing error, and task
// re-dispatch after a worker process exits.
//
// Injection is probabilistic on purpose. A redelivered task must have a
// chance of succeeding on its next attempt, and any deterministic rule keyed
// to the task index would fail the same task on every redelivery, so no
// number of retries could ever demonstrate recovery.
//
// This is a test-only collaborator: an Injector built from a nil FaultSpec is
// inert, and tasks carry no FaultSpec in normal operation.
package chaos
