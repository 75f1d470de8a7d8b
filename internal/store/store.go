// Package store provides a thin bbolt wrapper for grib-getter's local
// fetch journal.
//
// Design philosophy: the journal is an append-only record of every fetch
// run, written by the fetch command and read by history commands. No TTL,
// no auto-invalidation — you own your history.
//
// Buckets:
//
//	runs  — one entry per fetch invocation, keyed by start time
//	_meta — internal: schema version, created_at
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/johnny111272/grib-getter/internal/model"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

// Bucket name constants.
var (
	bucketRuns     = []byte("runs")
	bucketInternal = []byte("_meta")
)

// Run is one journal entry: a single fetch invocation and its outcome.
type Run struct {
	Preset          string    `json:"preset"`
	Product         string    `json:"product"`
	Cycle           string    `json:"cycle,omitempty"` // YYYYMMDD/HH of the cycle that succeeded
	OutputPath      string    `json:"output_path,omitempty"`
	Bytes           int       `json:"bytes"`
	Success         bool      `json:"success"`
	Attempts        int       `json:"attempts"`
	DurationSeconds float64   `json:"duration_seconds"`
	StartedAt       time.Time `json:"started_at"`
}

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// migrate ensures all buckets exist and schema is current.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketRuns, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Runs ─────────────────────────────────────────────────────────────────────

// NewRun builds a journal entry from a fetch result.
func NewRun(preset, product, cycle, outputPath string, startedAt time.Time, res model.FetchResult) Run {
	return Run{
		Preset:          preset,
		Product:         product,
		Cycle:           cycle,
		OutputPath:      outputPath,
		Bytes:           len(res.Data),
		Success:         res.Success,
		Attempts:        len(res.Attempts),
		DurationSeconds: res.Duration.Seconds(),
		StartedAt:       startedAt.UTC(),
	}
}

// runKey builds the bucket key for a run. RFC3339Nano start times sort
// chronologically and distinguish runs started within the same second.
func runKey(r Run) []byte {
	return []byte(r.StartedAt.UTC().Format(time.RFC3339Nano))
}

// PutRun appends a run to the journal.
func (s *Store) PutRun(r Run) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).Put(runKey(r), data)
	})
}

// ListRuns returns the most recent limit runs, newest first.
// Pass limit <= 0 for all runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding run %s: %w", k, err)
			}
			runs = append(runs, r)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	return runs, err
}

// LastSuccess returns the most recent successful run for a preset and
// product pair. Found is false when no such run exists.
func (s *Store) LastSuccess(preset, product string) (Run, bool, error) {
	var run Run
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding run %s: %w", k, err)
			}
			if r.Success && r.Preset == preset && r.Product == product {
				run = r
				found = true
				return nil
			}
		}
		return nil
	})
	return run, found, err
}

// Clear deletes the whole journal.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketRuns); err != nil {
			return fmt.Errorf("clearing runs: %w", err)
		}
		_, err := tx.CreateBucket(bucketRuns)
		return err
	})
}

// ─── Stats ────────────────────────────────────────────────────────────────────

// Stats holds journal row count and approximate byte size.
type Stats struct {
	Runs  int
	Bytes int64
}

// JournalStats returns row count and approximate size of the journal.
func (s *Store) JournalStats() (Stats, error) {
	var st Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			st.Runs++
			st.Bytes += int64(len(k) + len(v))
			return nil
		})
	})
	return st, err
}
