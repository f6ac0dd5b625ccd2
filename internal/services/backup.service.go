package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Git subprocess bounds. Pushes cross the network and get more room.
const (
	gitOpTimeout   = 30 * time.Second
	gitPushTimeout = 60 * time.Second
)

// Identity stamped on backup commits.
const (
	backupCommitName  = "botstats-backup"
	backupCommitEmail = "backup@botstats.local"
)

// ErrRemoteDisabled is returned by remote operations when no backup
// remote is configured.
var ErrRemoteDisabled = errors.New("remote backup is not configured")

// ErrBackupBusy is returned when a restore or reload is requested
// while another backup operation holds the repository.
var ErrBackupBusy = errors.New("another backup operation is in progress")

// Revision is one commit in the backup repository.
type Revision struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// BackupStatus is the health view of the persistence layer.
type BackupStatus struct {
	Enabled     bool      `json:"enabled"`
	LastAttempt time.Time `json:"last_attempt,omitzero"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
	Corrupt     bool      `json:"corrupt,omitempty"`
}

// Backend is what the scheduler and the admin surface need from the
// persistence layer. Implementations work on PersistedState values;
// they never touch live State. Backup reports whether it actually ran:
// a trigger while another backup is in flight returns (false, nil),
// success as a no-op, never queued.
type Backend interface {
	Load(ctx context.Context) (*PersistedState, error)
	Flush(p *PersistedState) error
	Backup(ctx context.Context, p *PersistedState) (bool, error)
	ListRevisions(ctx context.Context, limit int) ([]Revision, error)
	Restore(ctx context.Context, revision string) (*PersistedState, error)
	Reload(ctx context.Context) (*PersistedState, error)
	Status() BackupStatus
}

// statusTracker is the shared bookkeeping behind Backend.Status.
type statusTracker struct {
	mu     sync.Mutex
	status BackupStatus
}

func (t *statusTracker) noteAttempt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.LastAttempt = time.Now().UTC()
}

func (t *statusTracker) noteSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.LastSuccess = time.Now().UTC()
	t.status.LastError = ""
}

func (t *statusTracker) noteError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.LastError = err.Error()
}

func (t *statusTracker) noteCorrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Corrupt = true
}

func (t *statusTracker) snapshot(enabled bool) BackupStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.status
	s.Enabled = enabled
	return s
}

// GitBackend persists state to the local data directory and mirrors it
// to a remote git repository. The data directory IS the working tree:
// every backup is flush, add, commit when dirty, push.
type GitBackend struct {
	store  *FileStore
	repo   *GitRepo
	remote string
	branch string

	// Serializes remote operations. Backup uses TryLock for its
	// single-flight no-op semantics; restore and reload refuse with
	// ErrBackupBusy instead of waiting behind a slow push.
	opMu sync.Mutex

	statusTracker
}

// NewGitBackend wires a backend over the store's directory. repoURL is
// the https remote; token is injected into it for pushes and scrubbed
// from every diagnostic.
func NewGitBackend(store *FileStore, repoURL, token, branch string) *GitBackend {
	return &GitBackend{
		store:  store,
		repo:   &GitRepo{Dir: store.Dir(), Redact: []string{token}},
		remote: authenticatedRemote(repoURL, token),
		branch: branch,
	}
}

// authenticatedRemote embeds the token as the password of the remote
// URL, the form GitHub accepts for token pushes.
func authenticatedRemote(repoURL, token string) string {
	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return repoURL
	}
	u.User = url.UserPassword("x-access-token", token)
	return u.String()
}

func (b *GitBackend) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return b.repo.Run(ctx, args...)
}

// Load prepares the data directory at startup and reads durable state.
// Local files win when present: an unpushed crash must not be undone
// by an older remote copy (the backup cycle reconciles with the remote
// later, also favoring local). Only a data directory with no durable
// files pulls the remote copy down.
func (b *GitBackend) Load(ctx context.Context) (*PersistedState, error) {
	dir := b.store.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	if !b.repo.IsRepo() {
		if _, err := b.run(ctx, gitOpTimeout, "init", "-b", b.branch); err != nil {
			return nil, fmt.Errorf("init backup repo: %w", err)
		}
		log.Printf("[BACKUP] Initialized backup repository in %s", dir)
	}

	// Re-point origin every boot; the token rotates.
	_, _ = b.run(ctx, gitOpTimeout, "remote", "remove", "origin")
	if _, err := b.run(ctx, gitOpTimeout, "remote", "add", "origin", b.remote); err != nil {
		return nil, fmt.Errorf("configure backup remote: %w", err)
	}

	if !b.hasLocalData() {
		if err := b.pullRemote(ctx); err != nil {
			log.Printf("[BACKUP] No local data and remote unavailable, starting empty: %v", err)
		}
	}

	return b.store.Load()
}

func (b *GitBackend) hasLocalData() bool {
	for _, name := range []string{serversFile, countersFile, historyFile} {
		if _, err := os.Stat(filepath.Join(b.store.Dir(), name)); err == nil {
			return true
		}
	}
	return false
}

func (b *GitBackend) pullRemote(ctx context.Context) error {
	if _, err := b.run(ctx, gitPushTimeout, "fetch", "origin"); err != nil {
		return err
	}
	if _, err := b.run(ctx, gitOpTimeout, "rev-parse", "--verify", "origin/"+b.branch); err != nil {
		return fmt.Errorf("remote branch %s not found: %w", b.branch, err)
	}
	if _, err := b.run(ctx, gitOpTimeout, "reset", "--hard", "origin/"+b.branch); err != nil {
		return err
	}
	log.Printf("[BACKUP] Restored data directory from origin/%s", b.branch)
	return nil
}

// Flush writes the durable files locally. No remote I/O.
func (b *GitBackend) Flush(p *PersistedState) error {
	return b.store.Save(p)
}

// Backup flushes and mirrors the durable files to the remote. Single
// flight: if another backup holds the repository the call returns
// (false, nil) immediately.
func (b *GitBackend) Backup(ctx context.Context, p *PersistedState) (bool, error) {
	if !b.opMu.TryLock() {
		return false, nil
	}
	defer b.opMu.Unlock()

	b.noteAttempt()
	if err := b.Flush(p); err != nil {
		b.noteError(err)
		return true, err
	}
	msg := "backup " + time.Now().UTC().Format(time.RFC3339)
	if err := b.commitAndPush(ctx, msg); err != nil {
		b.noteError(err)
		return true, err
	}
	b.noteSuccess()
	return true, nil
}

// commitAndPush stages everything, commits when the tree is dirty, and
// pushes. A rejected push is reconciled once: fetch, merge keeping the
// local tree wholesale, push again. A second rejection is left for the
// next cycle, after an integrity check that flags (but never repairs)
// a corrupt object store.
func (b *GitBackend) commitAndPush(ctx context.Context, msg string) error {
	if _, err := b.run(ctx, gitOpTimeout, "add", "-A"); err != nil {
		return err
	}
	dirty, err := b.run(ctx, gitOpTimeout, "status", "--porcelain")
	if err != nil {
		return err
	}
	if dirty != "" {
		if err := b.commit(ctx, msg); err != nil {
			return err
		}
	}

	pushErr := b.push(ctx)
	if pushErr == nil {
		return nil
	}
	log.Printf("[BACKUP] Push failed, reconciling with remote: %v", pushErr)

	if _, err := b.run(ctx, gitPushTimeout, "fetch", "origin"); err != nil {
		b.checkIntegrity(ctx)
		return fmt.Errorf("fetch during push recovery: %w", err)
	}
	if _, err := b.run(ctx, gitOpTimeout, "rev-parse", "--verify", "origin/"+b.branch); err == nil {
		_, err := b.run(ctx, gitOpTimeout,
			"-c", "user.name="+backupCommitName, "-c", "user.email="+backupCommitEmail,
			"merge", "-s", "ours", "--allow-unrelated-histories",
			"-m", "merge remote history, keeping local state", "origin/"+b.branch)
		if err != nil {
			return fmt.Errorf("merge during push recovery: %w", err)
		}
	}
	if err := b.push(ctx); err != nil {
		b.checkIntegrity(ctx)
		return fmt.Errorf("push after reconcile: %w", err)
	}
	log.Printf("[BACKUP] Push recovered after merge with origin/%s", b.branch)
	return nil
}

func (b *GitBackend) commit(ctx context.Context, msg string) error {
	_, err := b.run(ctx, gitOpTimeout,
		"-c", "user.name="+backupCommitName, "-c", "user.email="+backupCommitEmail,
		"commit", "-m", msg)
	return err
}

func (b *GitBackend) push(ctx context.Context) error {
	// HEAD:refs/heads/<branch> keeps pushes working even if the
	// local branch name drifted from the configured one.
	_, err := b.run(ctx, gitPushTimeout, "push", "origin", "HEAD:refs/heads/"+b.branch)
	return err
}

// checkIntegrity runs git fsck after repeated push failures. A corrupt
// object store is reported on /health and in the log; repair is a
// human decision, never automatic.
func (b *GitBackend) checkIntegrity(ctx context.Context) {
	if err := b.repoFsck(ctx); err != nil {
		b.noteCorrupt()
		log.Printf("[BACKUP] CORRUPTION: git object store failed fsck, manual repair required: %v", err)
	}
}

func (b *GitBackend) repoFsck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, gitOpTimeout)
	defer cancel()
	return b.repo.Fsck(ctx)
}

// ListRevisions returns the most recent backup commits, newest first.
func (b *GitBackend) ListRevisions(ctx context.Context, limit int) ([]Revision, error) {
	if !b.repo.HasCommits(ctx) {
		return []Revision{}, nil
	}
	out, err := b.run(ctx, gitOpTimeout, "log", "-n", strconv.Itoa(limit), "--format=%H%x09%ct%x09%s")
	if err != nil {
		return nil, err
	}
	revs := []Revision{}
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		sec, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		revs = append(revs, Revision{ID: parts[0], Time: time.Unix(sec, 0).UTC(), Message: parts[2]})
	}
	return revs, nil
}

// Restore checks out the durable files as they were at the given
// revision and returns the state read from them. The restored tree is
// committed and pushed best-effort so a restart cannot silently undo
// the restore.
func (b *GitBackend) Restore(ctx context.Context, revision string) (*PersistedState, error) {
	if !b.opMu.TryLock() {
		return nil, ErrBackupBusy
	}
	defer b.opMu.Unlock()

	if _, err := b.run(ctx, gitOpTimeout, "rev-parse", "--verify", revision+"^{commit}"); err != nil {
		return nil, fmt.Errorf("unknown revision %s: %w", revision, err)
	}
	if _, err := b.run(ctx, gitOpTimeout, "checkout", revision, "--", "."); err != nil {
		return nil, fmt.Errorf("checkout revision %s: %w", revision, err)
	}
	p, err := b.store.Load()
	if err != nil {
		return nil, err
	}
	short := revision
	if len(short) > 12 {
		short = short[:12]
	}
	if err := b.commitAndPush(ctx, "restore "+short); err != nil {
		log.Printf("[BACKUP] Restore succeeded locally but could not be pushed: %v", err)
	}
	return p, nil
}

// Reload throws away local state and takes the remote branch tip.
func (b *GitBackend) Reload(ctx context.Context) (*PersistedState, error) {
	if !b.opMu.TryLock() {
		return nil, ErrBackupBusy
	}
	defer b.opMu.Unlock()

	if err := b.pullRemote(ctx); err != nil {
		return nil, err
	}
	return b.store.Load()
}

// Status reports backup health.
func (b *GitBackend) Status() BackupStatus {
	return b.snapshot(true)
}

// LocalBackend persists to the data directory only. Used when no
// backup remote is configured; the service still flushes durably,
// it just has nowhere to mirror.
type LocalBackend struct {
	store *FileStore
	statusTracker
}

// NewLocalBackend returns a backend over the store's directory.
func NewLocalBackend(store *FileStore) *LocalBackend {
	return &LocalBackend{store: store}
}

// Load reads durable state, creating the data directory if needed.
func (l *LocalBackend) Load(ctx context.Context) (*PersistedState, error) {
	if err := os.MkdirAll(l.store.Dir(), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", l.store.Dir(), err)
	}
	return l.store.Load()
}

// Flush writes the durable files.
func (l *LocalBackend) Flush(p *PersistedState) error {
	return l.store.Save(p)
}

// Backup degrades to a local flush.
func (l *LocalBackend) Backup(ctx context.Context, p *PersistedState) (bool, error) {
	l.noteAttempt()
	if err := l.Flush(p); err != nil {
		l.noteError(err)
		return true, err
	}
	l.noteSuccess()
	return true, nil
}

// ListRevisions is unavailable without a remote.
func (l *LocalBackend) ListRevisions(ctx context.Context, limit int) ([]Revision, error) {
	return nil, ErrRemoteDisabled
}

// Restore is unavailable without a remote.
func (l *LocalBackend) Restore(ctx context.Context, revision string) (*PersistedState, error) {
	return nil, ErrRemoteDisabled
}

// Reload is unavailable without a remote.
func (l *LocalBackend) Reload(ctx context.Context) (*PersistedState, error) {
	return nil, ErrRemoteDisabled
}

// Status reports flush health; Enabled stays false.
func (l *LocalBackend) Status() BackupStatus {
	return l.snapshot(false)
}
