package services

import (
	"sync"
	"time"

	"botstats/internal/models"

	"github.com/coder/quartz"
)

// State is the whole in-memory model: the server registry, the global
// counters, and the history rings. It is constructed once at startup
// (from durable state when present), handed to the controllers and the
// scheduler, and torn down after the final flush.
//
// One coarse RWMutex guards everything. Each logical operation (report
// ingestion including counter reconciliation and history appends,
// snapshot reads, admin mutations) is a single lock acquisition, so
// counters and history can never drift apart under concurrent reports.
// Operations are small and arrive on a seconds scale; contention is not
// worth finer locking.
type State struct {
	mu sync.RWMutex

	servers   map[string]*models.ServerRecord
	counters  models.GlobalCounters
	global    *models.GlobalHistory
	perServer map[string]*models.ServerHistory

	clock           quartz.Clock
	onlineThreshold time.Duration
}

// NewState returns an empty State. onlineThreshold is the liveness
// window for the online predicate.
func NewState(clock quartz.Clock, onlineThreshold time.Duration) *State {
	return &State{
		servers:         make(map[string]*models.ServerRecord),
		global:          models.NewGlobalHistory(),
		perServer:       make(map[string]*models.ServerHistory),
		clock:           clock,
		onlineThreshold: onlineThreshold,
	}
}

// RestoreFrom replaces the registry, counters, and global history with
// the persisted ones. Per-server history rings are memory-only and are
// dropped: after a restore they may describe servers that no longer
// exist. Used at startup and by the admin restore/reload paths.
func (s *State) RestoreFrom(p *PersistedState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.servers = make(map[string]*models.ServerRecord, len(p.Servers))
	for id, rec := range p.Servers {
		s.servers[id] = rec.Clone()
	}
	s.counters = p.Counters
	if p.History != nil {
		s.global = p.History.Clone()
	} else {
		s.global = models.NewGlobalHistory()
	}
	s.perServer = make(map[string]*models.ServerHistory)

	s.evictGlobalLocked(s.clock.Now().UTC())
}

// Export deep-copies the durable subset of the state for the
// persistence layer, so serialization happens outside the lock.
func (s *State) Export() *PersistedState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	servers := make(map[string]*models.ServerRecord, len(s.servers))
	for id, rec := range s.servers {
		servers[id] = rec.Clone()
	}
	return &PersistedState{
		Servers:  servers,
		Counters: s.counters,
		History:  s.global.Clone(),
	}
}

// ServerCount reports how many servers have ever reported and not been
// deleted. Used by /health.
func (s *State) ServerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.servers)
}

// online reports the liveness predicate for one record.
func (s *State) online(rec *models.ServerRecord, now time.Time) bool {
	return now.Sub(rec.LastSeen) < s.onlineThreshold
}
