// Package blob provides types.BlobStore implementations for persisting
// finished grid artifacts: an in-memory store for tests and single-process
// use, a local filesystem store, and a Redis-backed store.
package blob
