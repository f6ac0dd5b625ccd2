package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botstats/internal/services"
)

// fakeBackend counts persistence calls. backupEntered is signaled at
// the start of every Backup; a non-nil blockBackup parks Backup until
// the channel is closed.
type fakeBackend struct {
	mu      sync.Mutex
	flushes int
	backups int
	last    *services.PersistedState

	backupEntered chan struct{}
	blockBackup   chan struct{}
	backupErr     error
}

func (f *fakeBackend) Load(context.Context) (*services.PersistedState, error) {
	return services.NewPersistedState(), nil
}

func (f *fakeBackend) Flush(p *services.PersistedState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	f.last = p
	return nil
}

func (f *fakeBackend) Backup(_ context.Context, p *services.PersistedState) (bool, error) {
	f.mu.Lock()
	f.backups++
	f.last = p
	entered := f.backupEntered
	block := f.blockBackup
	err := f.backupErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return true, err
}

func (f *fakeBackend) ListRevisions(context.Context, int) ([]services.Revision, error) {
	return nil, services.ErrRemoteDisabled
}

func (f *fakeBackend) Restore(context.Context, string) (*services.PersistedState, error) {
	return nil, services.ErrRemoteDisabled
}

func (f *fakeBackend) Reload(context.Context) (*services.PersistedState, error) {
	return nil, services.ErrRemoteDisabled
}

func (f *fakeBackend) Status() services.BackupStatus {
	return services.BackupStatus{}
}

func (f *fakeBackend) flushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

func (f *fakeBackend) backupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backups
}

func (f *fakeBackend) lastPersisted() *services.PersistedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for backup to start")
	}
}

func startTestScheduler(t *testing.T, backend services.Backend, flushEvery int, backupEvery time.Duration) (*services.Scheduler, *services.State, *quartz.Mock) {
	t.Helper()
	mClock := quartz.NewMock(t)
	state := services.NewState(mClock, testOnlineThreshold)
	s := services.StartScheduler(context.Background(), services.SchedulerOptions{
		State:           state,
		Backend:         backend,
		Clock:           mClock,
		Interval:        5 * time.Second,
		FlushEveryTicks: flushEvery,
		BackupEvery:     backupEvery,
	})
	t.Cleanup(func() { _ = s.Close() })
	return s, state, mClock
}

func TestSchedulerSamplesIdlePoints(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	_, state, mClock := startTestScheduler(t, backend, 0, 0)
	ctx := t.Context()

	for range 3 {
		mClock.Advance(5 * time.Second).MustWait(ctx)
	}

	assert.Equal(t, 3, state.HistoryPoints())
}

func TestSchedulerSkipsSamplingWhileFleetLive(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	_, state, mClock := startTestScheduler(t, backend, 0, 0)
	ctx := t.Context()

	state.ApplyReport(report("aaaaaaaa-1111", 2, 0, 0))
	require.Equal(t, 1, state.HistoryPoints())

	// While the server is inside the liveness window the tick adds
	// nothing; once it goes stale the sampler takes over again.
	mClock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 1, state.HistoryPoints())

	mClock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 2, state.HistoryPoints())
}

func TestSchedulerFlushCadence(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	_, _, mClock := startTestScheduler(t, backend, 2, 0)
	ctx := t.Context()

	mClock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 0, backend.flushCount())

	mClock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 1, backend.flushCount())

	mClock.Advance(5 * time.Second).MustWait(ctx)
	mClock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 2, backend.flushCount())

	// The flush carries the idle points sampled so far.
	require.NotNil(t, backend.lastPersisted())
	assert.Equal(t, 4, backend.lastPersisted().History.Len())
}

func TestSchedulerBackupCadence(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{backupEntered: make(chan struct{}, 16)}
	_, _, mClock := startTestScheduler(t, backend, 0, 10*time.Second)
	ctx := t.Context()

	mClock.Advance(5 * time.Second).MustWait(ctx)
	assert.Equal(t, 0, backend.backupCount())

	mClock.Advance(5 * time.Second).MustWait(ctx)
	waitSignal(t, backend.backupEntered)
	assert.Equal(t, 1, backend.backupCount())

	// Another backup interval elapses, another backup runs. Advancing
	// inside the poll keeps the test immune to the detached backup
	// still holding the slot on the first attempt.
	require.Eventually(t, func() bool {
		mClock.Advance(5 * time.Second).MustWait(ctx)
		return backend.backupCount() >= 2
	}, 10*time.Second, 10*time.Millisecond)
}

func TestTriggerBackupSingleFlight(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		backupEntered: make(chan struct{}, 16),
		blockBackup:   make(chan struct{}),
	}
	s, _, _ := startTestScheduler(t, backend, 0, 0)

	require.True(t, s.TriggerBackup("first"))
	waitSignal(t, backend.backupEntered)

	// While the first backup is parked, triggers are no-ops.
	assert.False(t, s.TriggerBackup("second"))
	assert.Equal(t, 1, backend.backupCount())

	close(backend.blockBackup)
	require.Eventually(t, func() bool {
		return s.TriggerBackup("third")
	}, 10*time.Second, 10*time.Millisecond)
	waitSignal(t, backend.backupEntered)
	assert.Equal(t, 2, backend.backupCount())
}

func TestSchedulerCloseRunsFinalFlushAndBackup(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	s, _, _ := startTestScheduler(t, backend, 5, time.Hour)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, backend.flushCount())
	assert.Equal(t, 1, backend.backupCount())

	// Close is idempotent.
	require.NoError(t, s.Close())
	assert.Equal(t, 1, backend.flushCount())
	assert.Equal(t, 1, backend.backupCount())
}

func TestSchedulerCloseWaitsForInflightBackup(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		backupEntered: make(chan struct{}, 16),
		blockBackup:   make(chan struct{}),
	}
	s, _, _ := startTestScheduler(t, backend, 0, time.Hour)

	require.True(t, s.TriggerBackup("forced"))
	waitSignal(t, backend.backupEntered)

	closed := make(chan struct{})
	go func() {
		_ = s.Close()
		close(closed)
	}()

	// The in-flight backup is parked, so Close must be too.
	select {
	case <-closed:
		t.Fatal("Close returned while a backup was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(backend.blockBackup)
	select {
	case <-closed:
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not return after the backup finished")
	}

	// One triggered backup, one shutdown backup, one shutdown flush.
	assert.Equal(t, 2, backend.backupCount())
	assert.Equal(t, 1, backend.flushCount())
}
