package services

import (
	"time"

	"botstats/internal/models"
)

// History bounds. The global ring outlives any one server; per-server
// rings are shorter-lived and memory-only.
const (
	globalHistoryMaxPoints = 100000
	globalHistoryRetention = 365 * 24 * time.Hour
	serverHistoryMaxPoints = 20000
	serverHistoryRetention = 7 * 24 * time.Hour
)

// appendGlobalPointLocked records one global chart point from the
// current aggregates. Caller holds the write lock.
func (s *State) appendGlobalPointLocked(now time.Time) {
	online, bots := 0, 0
	for _, rec := range s.servers {
		if s.online(rec, now) {
			online++
			bots += rec.BotsCount
		}
	}
	s.global.Append(now.Unix(), online, bots, s.counters.TotalSpawned, s.counters.TotalKilled)
	s.evictGlobalLocked(now)
}

func (s *State) evictGlobalLocked(now time.Time) {
	s.global.TrimBefore(now.Add(-globalHistoryRetention).Unix())
	s.global.TrimToCap(globalHistoryMaxPoints)
}

// RecordIdlePoint appends a global point only when no server is
// online. Reports append their own points, so sampling while servers
// are live would just duplicate them; sampling while everything is
// quiet is what keeps charts showing the gap instead of a flat line
// interpolated across it. Returns whether a point was recorded.
func (s *State) RecordIdlePoint() bool {
	now := s.clock.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.servers {
		if s.online(rec, now) {
			return false
		}
	}
	s.appendGlobalPointLocked(now)
	return true
}

// GlobalHistorySnapshot returns a copy of the global ring.
func (s *State) GlobalHistorySnapshot() *models.GlobalHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global.Clone()
}

// ServerHistorySnapshot returns a copy of one server's ring. A server
// that exists but has no ring yet yields an empty history, not nil.
func (s *State) ServerHistorySnapshot(id string) (*models.ServerHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.servers[id]; !ok {
		return nil, false
	}
	hist, ok := s.perServer[id]
	if !ok {
		return models.NewServerHistory(), true
	}
	return hist.Clone(), true
}

// ClearHistory empties the global ring and every per-server ring.
// Registry records and counters are untouched.
func (s *State) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.global = models.NewGlobalHistory()
	for id := range s.perServer {
		s.perServer[id] = models.NewServerHistory()
	}
}

// HistoryPoints reports the number of points in the global ring.
func (s *State) HistoryPoints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global.Len()
}
