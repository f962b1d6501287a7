// Package assembly reassembles distributed regional-analysis results into
// durable output grids.
//
// A large geospatial accessibility computation is split across many stateless
// workers, one task per origin. Workers publish per-origin results onto an
// at-least-once message channel; this package drains that channel, merges
// results into a positionally addressed 3-D grid, detects job completion
// exactly once despite duplicate or late delivery, and persists the finished
// grid in a compact delta-coded binary format.
//
// # Quick Start
//
//	reg := assembly.NewRegistry(store, assembly.WithLogger(logger))
//
//	job := types.Job{ID: types.NewJobID(), Zoom: 9, Width: 300, Height: 200, ValuesPerCell: 5}
//	if _, err := reg.Register(job); err != nil {
//	    return err
//	}
//
//	cfg := assembly.Config{}
//	consumer, err := assembly.NewConsumer(ch, reg, &cfg)
//	if err != nil {
//	    return err
//	}
//	go consumer.Run(ctx) // blocks until ctx is cancelled
//
// # Architecture
//
//   - grid: binary grid codec and the sentinel-filled accumulation buffer
//   - assembler: per-job state machine with duplicate absorption and
//     exactly-once finalization
//   - Registry (this package): jobId -> assembler map with coarse locking
//   - Consumer (this package): long-poll loop routing channel messages by job
//   - channel: NATS JetStream, RabbitMQ, and in-memory transports
//   - blob: memory, filesystem, and Redis artifact stores
//   - status: externally queryable "received N of M" job progress
//   - worker: worker-side task processing, including fault injection (chaos)
//     and the synchronous single-point interface
//
// # Delivery Semantics
//
// The channel is assumed to duplicate and reorder; the assembler compensates
// with a received-task bitset checked before any grid write and a one-shot
// finalization guard. Completion is purely count-based: a job either
// completes and publishes its artifact, or stays open awaiting results.
// Timeout-driven abandonment and task re-dispatch are policies for the layer
// above.
package assembly
