// Per-search snapshot storage. One JSON file per search key, replaced
// wholesale on every successful run: the file always mirrors the latest
// full listing, never a cumulative history.

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"go-jobwatch-automation/internal/monitor"
)

// Record is the persisted snapshot for one search key. The shape is part
// of the external interface (the files are read by humans and other
// tooling), so the JSON keys are fixed.
type Record struct {
	SearchKey      string        `json:"search_key"`
	SourceURL      string        `json:"source_url"`
	LastCheckedUTC *time.Time    `json:"last_checked_utc"`
	Jobs           []monitor.Job `json:"jobs"`
}

type Store struct {
	dir       string
	sourceURL string
	lock      *flock.Flock
}

// Open prepares the state directory and takes an exclusive lock on it so
// two scheduled runs can never interleave writes.
func Open(dir, sourceURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock state dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("state dir %s is locked by another run", dir)
	}

	return &Store{dir: dir, sourceURL: sourceURL, lock: lock}, nil
}

func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Load returns the last snapshot for key. A missing file is the
// first-run case: empty job set and nil timestamp, never an error.
func (s *Store) Load(key string) (*Record, error) {
	data, err := os.ReadFile(s.fileFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return &Record{
			SearchKey: key,
			SourceURL: s.sourceURL,
			Jobs:      []monitor.Job{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state for %s: %w", key, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse state for %s: %w", key, err)
	}
	if rec.Jobs == nil {
		rec.Jobs = []monitor.Job{}
	}
	return &rec, nil
}

// Save overwrites the snapshot for key with the given job set and the
// current time. Full replacement: postings that left the page leave the
// state with it (and would count as new if they ever came back).
func (s *Store) Save(key string, jobs []monitor.Job) error {
	if jobs == nil {
		jobs = []monitor.Job{}
	}
	now := time.Now().UTC()
	rec := Record{
		SearchKey:      key,
		SourceURL:      s.sourceURL,
		LastCheckedUTC: &now,
		Jobs:           jobs,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state for %s: %w", key, err)
	}
	if err := os.WriteFile(s.fileFor(key), data, 0644); err != nil {
		return fmt.Errorf("write state for %s: %w", key, err)
	}
	return nil
}

func (s *Store) fileFor(key string) string {
	return filepath.Join(s.dir, "jobs_"+key+".json")
}
