package models

import "time"

// PlayerEntry is one player on a reporting server.
type PlayerEntry struct {
	Name string `json:"name"`
	IsOp bool   `json:"is_op"`
}

// ServerRecord holds the latest reported state of one game server,
// keyed externally by its opaque server id (a UUID the mod generates).
// FirstSeen is set once when the id is first observed; LastSeen moves
// forward on every report and never backwards.
type ServerRecord struct {
	BotsCount         int           `json:"bots_count"`
	RealPlayersCount  int           `json:"real_players_count"`
	TotalPlayersCount int           `json:"total_players_count"`
	BotsSpawnedTotal  int64         `json:"bots_spawned_total"`
	BotsKilledTotal   int64         `json:"bots_killed_total"`
	ModVersion        string        `json:"mod_version"`
	MinecraftVersion  string        `json:"minecraft_version"`
	ServerCore        string        `json:"server_core"`
	BotsList          []string      `json:"bots_list"`
	PlayersList       []PlayerEntry `json:"players_list"`
	FirstSeen         time.Time     `json:"first_seen"`
	LastSeen          time.Time     `json:"last_seen"`
}

// Clone returns a deep copy so callers can hand records out of the
// locked region without aliasing the live slices.
func (r *ServerRecord) Clone() *ServerRecord {
	c := *r
	c.BotsList = append([]string(nil), r.BotsList...)
	c.PlayersList = append([]PlayerEntry(nil), r.PlayersList...)
	return &c
}
