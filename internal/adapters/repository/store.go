// Package repository holds the in-memory state store and the bounded
// history log. Both are written only by the tick scheduler; every other
// component reads.
package repository

import (
	"fmt"
	"sync/atomic"

	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/pkg/metrics"
)

// StateStore holds the current per-city state as one immutable snapshot,
// swapped atomically once per tick. Readers always observe a complete
// tick's output, never a mix of two ticks.
type StateStore struct {
	current atomic.Pointer[model.Snapshot]
}

// NewStateStore creates an empty store. Reads fail with ErrNoSnapshot
// until the first Replace.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// Replace publishes a whole tick's output. The snapshot is cloned so the
// caller may keep mutating its copy.
func (s *StateStore) Replace(snapshot model.Snapshot) {
	clone := snapshot.Clone()
	s.current.Store(&clone)
	metrics.UpdateStoreCities(len(clone.Cities))
}

// Get returns the current state for one city.
func (s *StateStore) Get(cityID string) (model.CityState, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return model.CityState{}, ErrNoSnapshot
	}
	state, ok := snapshot.Cities[cityID]
	if !ok {
		return model.CityState{}, fmt.Errorf("%w: %q", ErrNotFound, cityID)
	}
	return state, nil
}

// GetAll returns the full current snapshot. The copy is deep so callers
// cannot alias the stored map.
func (s *StateStore) GetAll() (model.Snapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return model.Snapshot{}, ErrNoSnapshot
	}
	return snapshot.Clone(), nil
}
