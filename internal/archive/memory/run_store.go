package memory

import (
	"context"
	"sort"
	"sync"

	"fantasy-hero-lab/internal/archive"
	"fantasy-hero-lab/internal/domain"
)

// RunStore is an in-memory implementation of archive.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CompileRun // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.CompileRun),
	}
}

// Insert adds a finished run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.CompileRun) error {
	if r == nil || r.RunID == "" {
		return archive.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return archive.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	runCopy := *r
	runCopy.Warnings = append([]string(nil), r.Warnings...)
	s.data[r.RunID] = &runCopy
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.CompileRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, archive.ErrNotFound
	}

	runCopy := *r
	runCopy.Warnings = append([]string(nil), r.Warnings...)
	return &runCopy, nil
}

// GetRecent retrieves the most recent runs, newest first, at most limit.
func (s *RunStore) GetRecent(_ context.Context, limit int) ([]*domain.CompileRun, error) {
	if limit <= 0 {
		return nil, archive.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CompileRun, 0, len(s.data))
	for _, r := range s.data {
		runCopy := *r
		runCopy.Warnings = append([]string(nil), r.Warnings...)
		result = append(result, &runCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.After(result[j].StartedAt)
		}
		return result[i].RunID > result[j].RunID
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ archive.RunStore = (*RunStore)(nil)
