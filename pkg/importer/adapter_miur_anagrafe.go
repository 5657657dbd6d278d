package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/cercaclasse/pkg/catalog"
)

func init() {
	Register(&miurAnagrafeAdapter{})
}

// miurAnagrafeAdapter imports the MIUR registry of state schools. The
// registry has no classes, so the class label is the school grade
// (e.g. "SCUOLA PRIMARIA").
type miurAnagrafeAdapter struct{}

func (a *miurAnagrafeAdapter) ID() string          { return "miur-anagrafe-statali" }
func (a *miurAnagrafeAdapter) DatasetID() string   { return "anagrafe-statali" }
func (a *miurAnagrafeAdapter) Description() string { return "MIUR anagrafe scuole statali" }
func (a *miurAnagrafeAdapter) DefaultURL() string {
	return "https://dati.istruzione.it/opendata/opendata/catalogo/elements1/SCUANAGRAFESTAT20252620250901.csv"
}
func (a *miurAnagrafeAdapter) License() string { return "IODL 2.0" }

func (a *miurAnagrafeAdapter) Import(ctx context.Context, sourceURL, outputDir string) (int, error) {
	dlDir, err := downloadDir(outputDir, a.ID())
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dlDir)

	csvPath := filepath.Join(dlDir, "anagrafe.csv")
	fmt.Printf("  download %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, csvPath); err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}

	records, err := parseMIURAnagrafe(csvPath)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}
	fmt.Printf("  %d schools\n", len(records))

	err = writeDataset(filepath.Join(outputDir, a.DatasetID()), &catalog.Manifest{
		ID:        a.DatasetID(),
		Version:   "2025-26",
		Source:    "MIUR Portale Unico dei Dati della Scuola",
		SourceURL: sourceURL,
		License:   a.License(),
	}, records)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// miurGradeColumn holds the school grade description in the registry.
const miurGradeColumn = "DESCRIZIONETIPOLOGIAGRADOISTRUZIONESCUOLA"

// parseMIURAnagrafe reads the registry CSV (comma-delimited, optionally quoted).
// Columns include CODICESCUOLA, CODICEISTITUTORIFERIMENTO, DENOMINAZIONESCUOLA,
// DENOMINAZIONEISTITUTORIFERIMENTO, DESCRIZIONECOMUNE, PROVINCIA and the grade.
func parseMIURAnagrafe(path string) ([]catalog.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readMIURAnagrafe(f)
}

// readMIURAnagrafe skips malformed rows and stops on any other read error.
func readMIURAnagrafe(src io.Reader) ([]catalog.Record, error) {
	r := csv.NewReader(src)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := colIdx[h]; !seen {
			colIdx[h] = i
		}
	}

	c := catalog.DefaultColumns
	required := []struct{ field, col string }{
		{"schoolCode", c.SchoolCode},
		{"institutionCode", c.InstitutionCode},
		{"schoolName", c.SchoolName},
		{"institutionName", c.InstitutionName},
		{"municipality", c.Municipality},
		{"province", c.Province},
	}
	for _, rc := range required {
		if _, ok := colIdx[rc.col]; !ok {
			return nil, &catalog.MissingColumnError{Field: rc.field, Column: rc.col}
		}
	}
	gradeCol, hasGrade := colIdx[miurGradeColumn]

	get := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []catalog.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		code := get(row, c.SchoolCode)
		if code == "" {
			continue
		}
		rec := catalog.Record{
			SchoolCode:      code,
			InstitutionCode: get(row, c.InstitutionCode),
			SchoolName:      get(row, c.SchoolName),
			InstitutionName: get(row, c.InstitutionName),
			Municipality:    get(row, c.Municipality),
			Province:        get(row, c.Province),
		}
		if hasGrade && gradeCol < len(row) {
			rec.ClassLabel = strings.TrimSpace(row[gradeCol])
		}
		records = append(records, rec)
	}
	return records, nil
}
