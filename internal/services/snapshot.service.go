package services

import (
	"sort"

	"botstats/internal/models"
)

// redactID truncates a server id for the public surface. Full ids are
// admin-only.
func redactID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return id + "..."
}

// BuildSnapshot derives the public aggregate view. Only servers inside
// the online threshold count toward ServersOnline and BotsActive; the
// lifetime totals come from the global counters. ModVersion is taken
// from the most recently seen online server so the dashboard shows
// what the fleet actually runs.
func (s *State) BuildSnapshot() *models.StatsSnapshot {
	now := s.clock.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &models.StatsSnapshot{
		BotsSpawnedTotal: s.counters.TotalSpawned,
		BotsKilledTotal:  s.counters.TotalKilled,
		ModVersion:       models.UnknownVersion,
		LastUpdate:       now,
		Servers:          []models.ServerSummary{},
	}

	type liveServer struct {
		id  string
		rec *models.ServerRecord
	}
	live := make([]liveServer, 0, len(s.servers))
	for id, rec := range s.servers {
		if s.online(rec, now) {
			live = append(live, liveServer{id, rec})
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if !live[i].rec.FirstSeen.Equal(live[j].rec.FirstSeen) {
			return live[i].rec.FirstSeen.Before(live[j].rec.FirstSeen)
		}
		return live[i].id < live[j].id
	})

	var newest liveServer
	for _, ls := range live {
		snap.ServersOnline++
		snap.BotsActive += ls.rec.BotsCount
		snap.Servers = append(snap.Servers, models.ServerSummary{
			ID:       redactID(ls.id),
			Bots:     ls.rec.BotsCount,
			LastSeen: ls.rec.LastSeen,
		})
		if newest.rec == nil || ls.rec.LastSeen.After(newest.rec.LastSeen) {
			newest = ls
		}
	}
	if newest.rec != nil {
		snap.ModVersion = newest.rec.ModVersion
	}
	return snap
}

// OnlineServers returns the ids of servers currently inside the online
// threshold, sorted.
func (s *State) OnlineServers() []string {
	now := s.clock.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.servers))
	for id, rec := range s.servers {
		if s.online(rec, now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// AdminServer returns one server's full record with derived liveness.
func (s *State) AdminServer(id string) (*models.AdminServer, bool) {
	now := s.clock.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.servers[id]
	if !ok {
		return nil, false
	}
	return &models.AdminServer{
		ID:           id,
		Online:       s.online(rec, now),
		ServerRecord: *rec.Clone(),
	}, true
}

// AdminServers returns the full unredacted listing: online servers
// first, the longest-running of them on top, then offline servers with
// the most recently lost one on top.
func (s *State) AdminServers() []models.AdminServer {
	now := s.clock.Now().UTC()

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.AdminServer, 0, len(s.servers))
	for id, rec := range s.servers {
		list = append(list, models.AdminServer{
			ID:           id,
			Online:       s.online(rec, now),
			ServerRecord: *rec.Clone(),
		})
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Online != b.Online {
			return a.Online
		}
		if a.Online {
			if !a.FirstSeen.Equal(b.FirstSeen) {
				return a.FirstSeen.Before(b.FirstSeen)
			}
		} else {
			if !a.LastSeen.Equal(b.LastSeen) {
				return a.LastSeen.After(b.LastSeen)
			}
		}
		return a.ID < b.ID
	})
	return list
}
