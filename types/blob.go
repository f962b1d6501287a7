package types

import "context"

// BlobStore is an opaque key-value artifact store. The assembler writes
// finished grids to it under deterministic keys (see GridKey) so reprocessing
// a job idempotently overwrites the same artifact.
//
// Implementations in the blob package cover in-memory, local filesystem, and
// Redis backends.
type BlobStore interface {
	// Put stores data under key, replacing any existing value.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the value stored under key.
	// Returns ErrBlobNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
}
