// Package assembler implements the per-job state machine that accumulates
// origin results into a grid buffer and publishes the finished artifact.
//
// One Assembler is created per active job and owns that job's grid buffer for
// the job's lifetime. Results may arrive concurrently and more than once; the
// assembler absorbs duplicates via a received-task bitset checked before any
// grid write, counts error-flagged results toward completion so a single
// failed origin cannot hang the job, and finalizes exactly once when the
// distinct-result count reaches the job's task count.
package assembler
