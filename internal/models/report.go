package models

// UnknownVersion is the default for string fields the mod did not send.
const UnknownVersion = "unknown"

// StatsReport is the payload a game server POSTs to /api/stats.
// ServerID is the only required field; everything else defaults.
type StatsReport struct {
	ServerID          string        `json:"server_id"`
	BotsCount         int           `json:"bots_count"`
	BotsSpawnedTotal  int64         `json:"bots_spawned_total"`
	BotsKilledTotal   int64         `json:"bots_killed_total"`
	ModVersion        string        `json:"mod_version"`
	MinecraftVersion  string        `json:"minecraft_version"`
	RealPlayersCount  int           `json:"real_players_count"`
	TotalPlayersCount int           `json:"total_players_count"`
	BotsList          []string      `json:"bots_list"`
	PlayersList       []PlayerEntry `json:"players_list"`
	ServerCore        string        `json:"server_core"`
}

// Normalize fills deterministic defaults for optional fields: numeric
// fields stay zero, version strings become "unknown", lists become
// empty rather than null.
func (r *StatsReport) Normalize() {
	if r.ModVersion == "" {
		r.ModVersion = UnknownVersion
	}
	if r.MinecraftVersion == "" {
		r.MinecraftVersion = UnknownVersion
	}
	if r.ServerCore == "" {
		r.ServerCore = UnknownVersion
	}
	if r.BotsList == nil {
		r.BotsList = []string{}
	}
	if r.PlayersList == nil {
		r.PlayersList = []PlayerEntry{}
	}
}
