package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Bounds for detached and shutdown persistence work.
const (
	backupRunTimeout = 3 * time.Minute
	shutdownTimeout  = 2 * time.Minute
)

// SchedulerOptions configures the background persistence loop.
type SchedulerOptions struct {
	State   *State
	Backend Backend
	Clock   quartz.Clock
	Metrics *Metrics

	// Interval is the base tick. FlushEveryTicks counts ticks
	// between local flushes (0 means the ingest path flushes after
	// every report instead). BackupEvery is the remote backup
	// period; 0 disables scheduled backups.
	Interval        time.Duration
	FlushEveryTicks int
	BackupEvery     time.Duration
}

// Scheduler is the single background loop: every tick it samples the
// quiet-period history point, flushes durable state on the flush
// cadence, and kicks off a remote backup on the backup cadence.
// Backups run detached so a slow push never stalls sampling.
type Scheduler struct {
	state       *State
	backend     Backend
	clock       quartz.Clock
	metrics     *Metrics
	flushEvery  int
	backupEvery time.Duration

	cancel context.CancelFunc
	closed chan struct{}
	once   sync.Once

	ticks      int
	lastBackup time.Time

	// Held for the duration of a detached backup. TryLock gives
	// triggers their no-op semantics; Close locks it outright so
	// shutdown waits for in-flight work instead of abandoning it.
	backupMu sync.Mutex
}

// StartScheduler launches the loop. The caller must Close it; closing
// runs one final flush and, when a backup cadence is configured, one
// final backup attempt.
func StartScheduler(ctx context.Context, opts SchedulerOptions) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		state:       opts.State,
		backend:     opts.Backend,
		clock:       opts.Clock,
		metrics:     opts.Metrics,
		flushEvery:  opts.FlushEveryTicks,
		backupEvery: opts.BackupEvery,
		cancel:      cancel,
		closed:      make(chan struct{}),
		lastBackup:  opts.Clock.Now(),
	}

	w := s.clock.TickerFunc(ctx, opts.Interval, func() error {
		s.tick()
		return nil
	}, "scheduler")
	go func() {
		defer close(s.closed)
		_ = w.Wait()
	}()

	log.Printf("[STARTUP] Scheduler running (tick %v, flush every %d ticks, backup every %v)",
		opts.Interval, opts.FlushEveryTicks, opts.BackupEvery)
	return s
}

func (s *Scheduler) tick() {
	s.state.RecordIdlePoint()

	s.ticks++
	if s.flushEvery > 0 && s.ticks%s.flushEvery == 0 {
		s.FlushNow()
	}

	if s.backupEvery > 0 && s.clock.Since(s.lastBackup) >= s.backupEvery {
		s.lastBackup = s.clock.Now()
		s.TriggerBackup("scheduled")
	}
}

// FlushNow serializes state to the local durable files. Failures are
// logged; in-memory state is never touched.
func (s *Scheduler) FlushNow() {
	if err := s.backend.Flush(s.state.Export()); err != nil {
		log.Printf("[STORE] Flush failed: %v", err)
	}
}

// TriggerBackup starts a detached backup unless one is already in
// flight, and reports whether a new one started. The in-flight case is
// a success: the running backup is already persisting current state.
func (s *Scheduler) TriggerBackup(reason string) bool {
	if !s.backupMu.TryLock() {
		return false
	}
	go func() {
		defer s.backupMu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), backupRunTimeout)
		defer cancel()
		s.runBackup(ctx, reason)
	}()
	return true
}

func (s *Scheduler) runBackup(ctx context.Context, reason string) {
	started, err := s.backend.Backup(ctx, s.state.Export())
	switch {
	case err != nil:
		s.metrics.BackupFinished(err)
		log.Printf("[BACKUP] Backup failed (%s): %v", reason, err)
	case !started:
		log.Printf("[BACKUP] Backup skipped (%s), another already in flight", reason)
	default:
		s.metrics.BackupFinished(nil)
		log.Printf("[BACKUP] Backup completed (%s)", reason)
	}
}

// Close stops the loop, waits for it, then flushes once more and makes
// a final backup attempt under a bounded timeout.
func (s *Scheduler) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.closed

		s.FlushNow()
		if s.backupEvery > 0 {
			s.backupMu.Lock()
			defer s.backupMu.Unlock()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			s.runBackup(ctx, "shutdown")
		}
	})
	return nil
}
