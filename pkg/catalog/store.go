package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Loader produces the full record sequence of a dataset.
type Loader func() ([]Record, error)

// Store parses the dataset once, on first use, and keeps it for the
// process lifetime. A failed load caches nothing: the next call retries.
// loadMu serializes loads; stateMu guards the cached state so Loaded and
// Len answer while a load is in flight.
type Store struct {
	load   Loader
	loadMu sync.Mutex

	stateMu sync.RWMutex
	records []Record
	loaded  bool
}

// NewStore creates a store that loads lazily through load.
func NewStore(load Loader) *Store {
	return &Store{load: load}
}

// Records returns the cached records, loading them on the first call.
// The returned slice is shared and must not be modified.
func (s *Store) Records() ([]Record, error) {
	if records, ok := s.cached(); ok {
		return records, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have loaded while we waited.
	if records, ok := s.cached(); ok {
		return records, nil
	}
	records, err := s.load()
	if err != nil {
		return nil, err
	}

	s.stateMu.Lock()
	s.records = records
	s.loaded = true
	s.stateMu.Unlock()
	return records, nil
}

func (s *Store) cached() ([]Record, bool) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.records, s.loaded
}

// Loaded reports whether the records are cached.
func (s *Store) Loaded() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.loaded
}

// Len returns the number of cached records, 0 before the first load.
func (s *Store) Len() int {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return len(s.records)
}

// Reset drops the cached records so the next call loads again.
// Used by tests; a running server never reloads.
func (s *Store) Reset() {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.stateMu.Lock()
	s.records = nil
	s.loaded = false
	s.stateMu.Unlock()
}

// DirLoader loads the dataset stored in dir: manifest.yaml (optional,
// defaults otherwise), then data.gob if present, else the CSV data file.
func DirLoader(dir string) Loader {
	return func() ([]Record, error) {
		m := DefaultManifest()
		manifestPath := filepath.Join(dir, "manifest.yaml")
		if _, err := os.Stat(manifestPath); err == nil {
			if m, err = LoadManifest(manifestPath); err != nil {
				return nil, err
			}
		}

		// Gob takes priority over CSV.
		gobPath := filepath.Join(dir, "data.gob")
		if _, err := os.Stat(gobPath); err == nil {
			records, err := LoadGob(gobPath)
			if err != nil {
				return nil, fmt.Errorf("dataset %s: %w", m.ID, err)
			}
			return records, nil
		}

		f, err := os.Open(filepath.Join(dir, m.DataFile))
		if err != nil {
			return nil, fmt.Errorf("dataset %s: open data file: %w", m.ID, err)
		}
		defer f.Close()

		records, err := ParseRecords(f, m)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", m.ID, err)
		}
		return records, nil
	}
}
