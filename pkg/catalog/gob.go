// CLAUDE:SUMMARY Gob snapshot of parsed records, written by the importer and preferred over CSV at load time.
package catalog

import (
	"encoding/gob"
	"fmt"
	"os"
)

// LoadGob decodes a record snapshot written by SaveGob.
func LoadGob(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var records []Record
	if err := gob.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return records, nil
}

// SaveGob serializes records to a gob-encoded file at path.
func SaveGob(records []Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(records); err != nil {
		f.Close()
		return fmt.Errorf("encode gob: %w", err)
	}
	return f.Close()
}
