package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/cercaclasse/pkg/catalog"
)

func init() {
	Register(&classiCSVAdapter{})
}

// classiCSVAdapter imports a class export already in the served layout
// (CODICESCUOLA, ..., CLASSE_DISPLAY). The export is not published at a
// fixed location: set its URL with `import --source classi-csv --url`.
type classiCSVAdapter struct{}

func (a *classiCSVAdapter) ID() string          { return "classi-csv" }
func (a *classiCSVAdapter) DatasetID() string   { return "classi" }
func (a *classiCSVAdapter) Description() string { return "Classi con istituto di riferimento (CSV)" }
func (a *classiCSVAdapter) DefaultURL() string  { return "" }
func (a *classiCSVAdapter) License() string     { return "IODL 2.0" }

func (a *classiCSVAdapter) Import(ctx context.Context, sourceURL, outputDir string) (int, error) {
	dlDir, err := downloadDir(outputDir, a.ID())
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dlDir)

	csvPath := filepath.Join(dlDir, "classi.csv")
	fmt.Printf("  download %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, csvPath); err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	// Same parser as the record store, so a bad header fails here and not at
	// the first query.
	records, err := catalog.ParseRecords(f, catalog.DefaultManifest())
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	fmt.Printf("  %d classes\n", len(records))

	err = writeDataset(filepath.Join(outputDir, a.DatasetID()), &catalog.Manifest{
		ID:        a.DatasetID(),
		Version:   "1",
		Source:    "classi con istituto",
		SourceURL: sourceURL,
		License:   a.License(),
	}, records)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
