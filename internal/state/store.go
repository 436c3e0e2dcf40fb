package state

import (
	"fmt"
	"slices"
	"sync"

	"github.com/bbrc/scout/internal/api"
)

// Snapshot is a copy of everything the pollers have stored.
type Snapshot struct {
	Stats  Resource[api.Stats]
	Status Resource[api.Status]
	Logs   Resource[[]string]
}

// IsOffline returns true when the backend has been unreachable for multiple
// polls of either stats or status.
func (s Snapshot) IsOffline() bool {
	return s.Stats.Offline() || s.Status.Offline()
}

// LastError returns the most recent polling error, preferring status.
func (s Snapshot) LastError() error {
	if err := s.Status.Err(); err != nil {
		return err
	}
	if err := s.Stats.Err(); err != nil {
		return err
	}
	return s.Logs.Err()
}

// Store coordinates poller writes with UI reads.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// BeginStats marks a stats fetch as in flight.
func (s *Store) BeginStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Stats.Begin()
}

// UpdateStats records a stats fetch. When err is non-nil the previous counters
// are kept.
func (s *Store) UpdateStats(v api.Stats, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Stats.Set(v, err)
}

// UpdateStatus records a status fetch.
func (s *Store) UpdateStatus(v api.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Status.Set(v, err)
}

// BeginLogs marks a logs fetch as in flight.
func (s *Store) BeginLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Logs.Begin()
}

// UpdateLogs records a logs fetch. The slice is copied.
func (s *Store) UpdateLogs(lines []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Logs.Set(slices.Clone(lines), err)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Logs.data = slices.Clone(s.snapshot.Logs.data)
	snap.Stats.err = cloneErr(s.snapshot.Stats.err)
	snap.Status.err = cloneErr(s.snapshot.Status.err)
	snap.Logs.err = cloneErr(s.snapshot.Logs.err)
	return snap
}

func cloneErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w", err)
}
