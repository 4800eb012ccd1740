// Package inmemory provides a map-backed storage driver. Runs live only as
// long as the process.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/papercomputeco/tabagent/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of runs
	mu sync.RWMutex

	// runs is keyed by run ID
	runs map[string]*storage.Run
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		runs: make(map[string]*storage.Run),
	}
}

// Put stores a copy of run, replacing any run with the same ID.
func (s *Driver) Put(_ context.Context, run *storage.Run) error {
	if run == nil {
		return storage.ErrNilRun
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run.Clone()
	return nil
}

// Get retrieves a run by its ID.
func (s *Driver) Get(_ context.Context, id string) (*storage.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	return run.Clone(), nil
}

// List returns at most limit runs ordered by start time, newest first.
func (s *Driver) List(_ context.Context, limit int) ([]*storage.Run, error) {
	s.mu.RLock()
	runs := make([]*storage.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Count returns the number of runs in the in-memory store.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
