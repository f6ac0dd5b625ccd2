package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"botstats/internal/models"
)

// The three durable files inside the data directory. The data
// directory doubles as the working tree of the backup repository, so
// these names are also the paths the dashboard's charting exports and
// the backup remote carry.
const (
	serversFile  = "servers.json"
	countersFile = "global_stats.json"
	historyFile  = "global_history.json"
)

// PersistedState is the durable subset of State: the registry, the
// global counters, and the global history. Per-server history rings
// are deliberately not part of it.
type PersistedState struct {
	Servers  map[string]*models.ServerRecord
	Counters models.GlobalCounters
	History  *models.GlobalHistory
}

// NewPersistedState returns an empty persisted state, the shape a
// first boot starts from.
func NewPersistedState() *PersistedState {
	return &PersistedState{
		Servers: make(map[string]*models.ServerRecord),
		History: models.NewGlobalHistory(),
	}
}

// FileStore reads and writes the durable files in the data directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the data directory path.
func (f *FileStore) Dir() string { return f.dir }

// Save writes all three durable files. Each file is written to a temp
// file in the same directory and renamed into place, so a crash mid
// write leaves the previous version intact rather than a truncated
// file.
func (f *FileStore) Save(p *PersistedState) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", f.dir, err)
	}
	if err := f.writeAtomic(serversFile, p.Servers); err != nil {
		return err
	}
	if err := f.writeAtomic(countersFile, p.Counters); err != nil {
		return err
	}
	return f.writeAtomic(historyFile, p.History)
}

func (f *FileStore) writeAtomic(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(f.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, errors.Join(werr, cerr))
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Load reads whatever durable files exist. Missing files are normal
// (first boot, or a backup remote that never had data) and leave that
// unit empty; unreadable or corrupt files are errors.
func (f *FileStore) Load() (*PersistedState, error) {
	p := NewPersistedState()

	if err := f.readFile(serversFile, &p.Servers); err != nil {
		return nil, err
	}
	if err := f.readFile(countersFile, &p.Counters); err != nil {
		return nil, err
	}
	if err := f.readFile(historyFile, p.History); err != nil {
		return nil, err
	}
	if p.Servers == nil {
		p.Servers = make(map[string]*models.ServerRecord)
	}
	p.History.Align()
	return p, nil
}

func (f *FileStore) readFile(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
