package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter defines a data source importer that downloads a public dataset
// and converts it into a dataset directory the record store can load.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "miur-anagrafe-statali").
	ID() string
	// DatasetID returns the target dataset directory name (e.g. "anagrafe-statali").
	DatasetID() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the source URL used for seeding the database, "" when
	// the source has no public location and the URL must be set by hand.
	DefaultURL() string
	// License returns the license identifier for this source (e.g. "IODL 2.0").
	License() string
	// Import downloads the source from sourceURL, converts it, writes
	// manifest.yaml, data.csv and data.gob into outputDir/DatasetID() and
	// returns the number of records written.
	Import(ctx context.Context, sourceURL, outputDir string) (int, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
