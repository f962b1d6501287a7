package status

import (
	"context"
	"fmt"
	"sync"

	"github.com/conveyal/r5-sub005/types"
)

// Memory is an in-memory status store for tests and single-process use.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]types.JobStatus
}

// Compile-time assertion that Memory implements StatusStore.
var _ types.StatusStore = (*Memory)(nil)

// NewMemory creates an empty in-memory status store.
func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]types.JobStatus)}
}

// Update upserts the status record for status.JobID.
func (s *Memory) Update(_ context.Context, status types.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[status.JobID] = status

	return nil
}

// Get returns the status record for jobID.
func (s *Memory) Get(_ context.Context, jobID string) (types.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.jobs[jobID]
	if !ok {
		return types.JobStatus{}, fmt.Errorf("%w: %s", types.ErrJobNotFound, jobID)
	}

	return st, nil
}
