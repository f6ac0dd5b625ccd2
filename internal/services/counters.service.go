package services

import (
	"botstats/internal/models"
)

// Counters returns the current global lifetime counters.
func (s *State) Counters() models.GlobalCounters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters
}

// SetCounters overwrites the global lifetime counters. Admin-only;
// the reconciler takes over again from the new values.
func (s *State) SetCounters(spawned, killed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.TotalSpawned = spawned
	s.counters.TotalKilled = killed
}

// ResetCounters zeroes the global lifetime counters. Stored per-server
// totals are untouched, so the next report from each server adds only
// activity that happens after the reset.
func (s *State) ResetCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = models.GlobalCounters{}
}
