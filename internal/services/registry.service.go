package services

import (
	"botstats/internal/models"
)

// ApplyReport ingests one agent report: it reconciles the lifetime
// counters against the previous totals from the same server, replaces
// the server's record, and appends a point to both the server's ring
// and the global ring. Everything happens under one lock acquisition
// so a snapshot can never observe the counters updated but the history
// not, or vice versa.
func (s *State) ApplyReport(rep *models.StatsReport) {
	rep.Normalize()
	now := s.clock.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.servers[rep.ServerID]
	if !ok {
		rec = &models.ServerRecord{FirstSeen: now}
		s.servers[rep.ServerID] = rec
	}

	// Counters first, against the totals still stored from the
	// previous report. A restarted server reports totals below the
	// stored ones; the reconciler treats that as zero new activity.
	s.counters.Reconcile(rec.BotsSpawnedTotal, rep.BotsSpawnedTotal, rec.BotsKilledTotal, rep.BotsKilledTotal)

	rec.BotsCount = rep.BotsCount
	rec.RealPlayersCount = rep.RealPlayersCount
	rec.TotalPlayersCount = rep.TotalPlayersCount
	rec.BotsSpawnedTotal = rep.BotsSpawnedTotal
	rec.BotsKilledTotal = rep.BotsKilledTotal
	rec.ModVersion = rep.ModVersion
	rec.MinecraftVersion = rep.MinecraftVersion
	rec.ServerCore = rep.ServerCore
	rec.BotsList = append([]string(nil), rep.BotsList...)
	rec.PlayersList = append([]models.PlayerEntry(nil), rep.PlayersList...)
	if now.After(rec.LastSeen) {
		rec.LastSeen = now
	}

	hist, ok := s.perServer[rep.ServerID]
	if !ok {
		hist = models.NewServerHistory()
		s.perServer[rep.ServerID] = hist
	}
	hist.Append(now.Unix(), rep.BotsCount, rep.RealPlayersCount)
	hist.TrimBefore(now.Add(-serverHistoryRetention).Unix())
	hist.TrimToCap(serverHistoryMaxPoints)

	s.appendGlobalPointLocked(now)
}

// Server returns a copy of one server's record.
func (s *State) Server(id string) (*models.ServerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.servers[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// DeleteServer removes a server and its history ring. The global
// counters keep the activity it contributed. Reports false when the
// id is unknown.
func (s *State) DeleteServer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.servers[id]; !ok {
		return false
	}
	delete(s.servers, id)
	delete(s.perServer, id)
	return true
}
