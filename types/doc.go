// Package types defines the core domain types and interfaces shared across
// the assembly library.
//
// This package is imported by every other package in the module and therefore
// depends on nothing inside it. It contains:
//
//   - Job and OriginResult, the units of regional-analysis work and work product
//   - Task, the tagged union describing work sent to compute workers
//   - ResultChannel and Message, the at-least-once transport abstraction
//   - BlobStore, the opaque key-value artifact store abstraction
//   - StatusStore, externally queryable job progress
//   - Logger and MetricsCollector, the observability seams
//   - Sentinel errors for type-safe error checking with errors.Is
package types
