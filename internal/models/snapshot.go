package models

import "time"

// ServerSummary is the redacted public projection of one online
// server: truncated id, current bot count, last report time. Full ids
// never leave the admin surface.
type ServerSummary struct {
	ID       string    `json:"id"`
	Bots     int       `json:"bots"`
	LastSeen time.Time `json:"last_seen"`
}

// StatsSnapshot is the derived aggregate view served on /api/stats.
// ServersOnline and BotsActive cover only servers inside the online
// threshold; the lifetime totals come from GlobalCounters, never from
// summing per-server totals. TotalDownloads is kept at 0 for dashboard
// compatibility.
type StatsSnapshot struct {
	ServersOnline    int             `json:"servers_online"`
	BotsActive       int             `json:"bots_active"`
	BotsSpawnedTotal int64           `json:"bots_spawned_total"`
	BotsKilledTotal  int64           `json:"bots_killed_total"`
	TotalDownloads   int             `json:"total_downloads"`
	ModVersion       string          `json:"mod_version"`
	LastUpdate       time.Time       `json:"last_update"`
	Servers          []ServerSummary `json:"servers"`
}

// AdminServer is one entry of the unredacted admin listing: the full
// record plus its id and derived liveness.
type AdminServer struct {
	ID     string `json:"id"`
	Online bool   `json:"online"`
	ServerRecord
}
