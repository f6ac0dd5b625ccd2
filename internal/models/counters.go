package models

// GlobalCounters are the process-wide lifetime totals. They only grow:
// each report contributes the positive delta between the server's new
// and previously stored local totals, so a server whose counter reset
// after a restart adds nothing instead of going negative. Admin edit
// and reset are the only other writers.
type GlobalCounters struct {
	TotalSpawned int64 `json:"total_spawned"`
	TotalKilled  int64 `json:"total_killed"`
}

// Reconcile adds the growth between a server's previously stored
// totals and its newly reported ones. Decreases contribute zero.
func (g *GlobalCounters) Reconcile(oldSpawned, newSpawned, oldKilled, newKilled int64) {
	if d := newSpawned - oldSpawned; d > 0 {
		g.TotalSpawned += d
	}
	if d := newKilled - oldKilled; d > 0 {
		g.TotalKilled += d
	}
}
