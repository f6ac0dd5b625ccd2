package models

// GlobalHistory is the long-horizon time series behind the public
// charts. The five slices are parallel: entry i across all of them is
// one sample. JSON keys match what the dashboard already charts.
type GlobalHistory struct {
	Timestamps    []int64 `json:"timestamps"`
	ServersOnline []int   `json:"servers"`
	BotsActive    []int   `json:"bots"`
	BotsSpawned   []int64 `json:"spawned"`
	BotsKilled    []int64 `json:"killed"`
}

// NewGlobalHistory returns a history with empty, non-nil sequences.
func NewGlobalHistory() *GlobalHistory {
	return &GlobalHistory{
		Timestamps:    []int64{},
		ServersOnline: []int{},
		BotsActive:    []int{},
		BotsSpawned:   []int64{},
		BotsKilled:    []int64{},
	}
}

// Len reports the number of samples.
func (h *GlobalHistory) Len() int { return len(h.Timestamps) }

// Append pushes one aligned sample.
func (h *GlobalHistory) Append(ts int64, servers, bots int, spawned, killed int64) {
	h.Timestamps = append(h.Timestamps, ts)
	h.ServersOnline = append(h.ServersOnline, servers)
	h.BotsActive = append(h.BotsActive, bots)
	h.BotsSpawned = append(h.BotsSpawned, spawned)
	h.BotsKilled = append(h.BotsKilled, killed)
}

// TrimBefore drops samples with timestamps at or before cutoff.
// Timestamps are appended in order, so this is a prefix cut.
func (h *GlobalHistory) TrimBefore(cutoff int64) {
	i := 0
	for i < len(h.Timestamps) && h.Timestamps[i] <= cutoff {
		i++
	}
	if i == 0 {
		return
	}
	h.Timestamps = h.Timestamps[i:]
	h.ServersOnline = h.ServersOnline[i:]
	h.BotsActive = h.BotsActive[i:]
	h.BotsSpawned = h.BotsSpawned[i:]
	h.BotsKilled = h.BotsKilled[i:]
}

// TrimToCap keeps only the newest max samples.
func (h *GlobalHistory) TrimToCap(max int) {
	if n := len(h.Timestamps); n > max {
		h.Timestamps = h.Timestamps[n-max:]
		h.ServersOnline = h.ServersOnline[n-max:]
		h.BotsActive = h.BotsActive[n-max:]
		h.BotsSpawned = h.BotsSpawned[n-max:]
		h.BotsKilled = h.BotsKilled[n-max:]
	}
}

// Align restores the parallel-slice invariant after decoding: nil
// sequences become empty and all sequences are truncated to the
// shortest, so a hand-edited durable file cannot cause misindexing.
func (h *GlobalHistory) Align() {
	n := len(h.Timestamps)
	if len(h.ServersOnline) < n {
		n = len(h.ServersOnline)
	}
	if len(h.BotsActive) < n {
		n = len(h.BotsActive)
	}
	if len(h.BotsSpawned) < n {
		n = len(h.BotsSpawned)
	}
	if len(h.BotsKilled) < n {
		n = len(h.BotsKilled)
	}
	h.Timestamps = append([]int64{}, h.Timestamps[:n]...)
	h.ServersOnline = append([]int{}, h.ServersOnline[:n]...)
	h.BotsActive = append([]int{}, h.BotsActive[:n]...)
	h.BotsSpawned = append([]int64{}, h.BotsSpawned[:n]...)
	h.BotsKilled = append([]int64{}, h.BotsKilled[:n]...)
}

// Clone returns an independent copy safe to hand to encoders while
// the original keeps mutating under the state lock.
func (h *GlobalHistory) Clone() *GlobalHistory {
	return &GlobalHistory{
		Timestamps:    append([]int64{}, h.Timestamps...),
		ServersOnline: append([]int{}, h.ServersOnline...),
		BotsActive:    append([]int{}, h.BotsActive...),
		BotsSpawned:   append([]int64{}, h.BotsSpawned...),
		BotsKilled:    append([]int64{}, h.BotsKilled...),
	}
}

// ServerHistory is the short-horizon per-server series: bot and player
// counts as reported. Same parallel-slice alignment as GlobalHistory.
type ServerHistory struct {
	Timestamps []int64 `json:"timestamps"`
	BotsCount  []int   `json:"bots"`
	Players    []int   `json:"players"`
}

// NewServerHistory returns a history with empty, non-nil sequences.
func NewServerHistory() *ServerHistory {
	return &ServerHistory{
		Timestamps: []int64{},
		BotsCount:  []int{},
		Players:    []int{},
	}
}

// Len reports the number of samples.
func (h *ServerHistory) Len() int { return len(h.Timestamps) }

// Append pushes one aligned sample.
func (h *ServerHistory) Append(ts int64, bots, players int) {
	h.Timestamps = append(h.Timestamps, ts)
	h.BotsCount = append(h.BotsCount, bots)
	h.Players = append(h.Players, players)
}

// TrimBefore drops samples with timestamps at or before cutoff.
func (h *ServerHistory) TrimBefore(cutoff int64) {
	i := 0
	for i < len(h.Timestamps) && h.Timestamps[i] <= cutoff {
		i++
	}
	if i == 0 {
		return
	}
	h.Timestamps = h.Timestamps[i:]
	h.BotsCount = h.BotsCount[i:]
	h.Players = h.Players[i:]
}

// TrimToCap keeps only the newest max samples.
func (h *ServerHistory) TrimToCap(max int) {
	if n := len(h.Timestamps); n > max {
		h.Timestamps = h.Timestamps[n-max:]
		h.BotsCount = h.BotsCount[n-max:]
		h.Players = h.Players[n-max:]
	}
}

// Clone returns an independent copy.
func (h *ServerHistory) Clone() *ServerHistory {
	return &ServerHistory{
		Timestamps: append([]int64{}, h.Timestamps...),
		BotsCount:  append([]int{}, h.BotsCount...),
		Players:    append([]int{}, h.Players...),
	}
}
