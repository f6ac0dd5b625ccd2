package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportAppendsGlobalPoint(t *testing.T) {
	t.Parallel()

	state, clock := newTestState(t)
	now := clock.Now().UTC()

	state.ApplyReport(report("aaaaaaaa-1111", 4, 10, 2))
	clock.Advance(time.Second)
	state.ApplyReport(report("bbbbbbbb-2222", 6, 5, 1))

	hist := state.GlobalHistorySnapshot()
	require.Equal(t, 2, hist.Len())

	assert.Equal(t, []int64{now.Unix(), now.Unix() + 1}, hist.Timestamps)
	assert.Equal(t, []int{1, 2}, hist.ServersOnline)
	assert.Equal(t, []int{4, 10}, hist.BotsActive)

	// Each point carries the lifetime totals as of that sample.
	assert.Equal(t, []int64{10, 15}, hist.BotsSpawned)
	assert.Equal(t, []int64{2, 3}, hist.BotsKilled)
}

func TestRecordIdlePointOnlyWhenQuiet(t *testing.T) {
	t.Parallel()

	state, clock := newTestState(t)

	// Nothing has ever reported: the sampler records the quiet.
	require.True(t, state.RecordIdlePoint())
	require.Equal(t, 1, state.HistoryPoints())

	state.ApplyReport(report("aaaaaaaa-1111", 4, 10, 2))
	require.Equal(t, 2, state.HistoryPoints())

	// A live server means reports carry the sampling; the tick adds
	// nothing.
	require.False(t, state.RecordIdlePoint())
	require.Equal(t, 2, state.HistoryPoints())

	// Past the liveness window the fleet is quiet again.
	clock.Advance(9 * time.Second)
	require.True(t, state.RecordIdlePoint())
	require.Equal(t, 3, state.HistoryPoints())

	hist := state.GlobalHistorySnapshot()
	assert.Equal(t, 0, hist.ServersOnline[2])
	assert.Equal(t, 0, hist.BotsActive[2])
	assert.Equal(t, int64(10), hist.BotsSpawned[2])
	assert.Equal(t, int64(2), hist.BotsKilled[2])
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	state, _ := newTestState(t)
	id := "aaaaaaaa-1111"
	state.ApplyReport(report(id, 4, 10, 2))
	require.Equal(t, 1, state.HistoryPoints())

	state.ClearHistory()

	assert.Equal(t, 0, state.HistoryPoints())
	hist, ok := state.ServerHistorySnapshot(id)
	require.True(t, ok)
	assert.Equal(t, 0, hist.Len())

	// Registry and counters are untouched.
	assert.Equal(t, 1, state.ServerCount())
	assert.Equal(t, int64(10), state.Counters().TotalSpawned)
}

func TestServerHistoryEvictsOldPoints(t *testing.T) {
	t.Parallel()

	state, clock := newTestState(t)
	id := "aaaaaaaa-1111"

	state.ApplyReport(report(id, 1, 0, 0))

	// Eight days later the first sample is outside the retention
	// window and the next report pushes it out.
	clock.Advance(8 * 24 * time.Hour)
	state.ApplyReport(report(id, 2, 0, 0))

	hist, ok := state.ServerHistorySnapshot(id)
	require.True(t, ok)
	require.Equal(t, 1, hist.Len())
	assert.Equal(t, []int{2}, hist.BotsCount)
}

func TestServerHistorySnapshotIsACopy(t *testing.T) {
	t.Parallel()

	state, _ := newTestState(t)
	id := "aaaaaaaa-1111"
	state.ApplyReport(report(id, 1, 0, 0))

	hist, ok := state.ServerHistorySnapshot(id)
	require.True(t, ok)
	hist.BotsCount[0] = 999

	fresh, ok := state.ServerHistorySnapshot(id)
	require.True(t, ok)
	assert.Equal(t, 1, fresh.BotsCount[0])
}
