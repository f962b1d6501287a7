package blob

import (
	"context"
	"fmt"

	"github.com/conveyal/r5-sub005/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// Memory is an in-memory blob store. Values are copied on Put and Get so
// callers can never alias the stored bytes.
type Memory struct {
	m *xsync.Map[string, []byte]
}

// Compile-time assertion that Memory implements BlobStore.
var _ types.BlobStore = (*Memory)(nil)

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{m: xsync.NewMap[string, []byte]()}
}

// Put stores a copy of data under key.
func (s *Memory) Put(_ context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.m.Store(key, cp)

	return nil
}

// Get returns a copy of the value stored under key.
func (s *Memory) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.m.Load(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrBlobNotFound, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

// Len returns the number of stored blobs.
func (s *Memory) Len() int {
	return s.m.Size()
}
