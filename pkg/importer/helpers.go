// CLAUDE:SUMMARY Shared import utilities: HTTP download with retries, dataset directory writer (manifest, CSV, gob).
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/cercaclasse/pkg/catalog"
)

// ErrNoSourceURL is returned when an adapter has no URL to import from.
var ErrNoSourceURL = errors.New("no source URL configured")

// downloadFile downloads url to dest with retries and timeout.
func downloadFile(ctx context.Context, url, dest string) error {
	if url == "" {
		return ErrNoSourceURL
	}
	client := &http.Client{Timeout: 10 * time.Minute}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			continue
		}

		f, err := os.Create(dest)
		if err != nil {
			resp.Body.Close()
			return fmt.Errorf("create file: %w", err)
		}

		_, copyErr := io.Copy(f, resp.Body)
		resp.Body.Close()
		closeErr := f.Close()

		if copyErr != nil {
			lastErr = copyErr
			continue
		}
		if closeErr != nil {
			return closeErr
		}
		return nil
	}
	return fmt.Errorf("download %s failed after 3 attempts: %w", url, lastErr)
}

// writeDataset writes manifest.yaml, data.csv and data.gob into dir.
// The CSV uses the default header names and the record store's naive
// format, so delimiters and line breaks inside values become spaces;
// the gob snapshot keeps the values intact and is what the store loads.
func writeDataset(dir string, m *catalog.Manifest, records []catalog.Record) error {
	if err := ensureDir(dir); err != nil {
		return err
	}

	m.DataFile = "data.csv"
	m.Format = catalog.FormatSpec{Delimiter: ",", Encoding: "utf-8"}
	m.Columns = catalog.DefaultColumns

	if err := writeCSV(filepath.Join(dir, m.DataFile), records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := catalog.SaveGob(records, filepath.Join(dir, "data.gob")); err != nil {
		return fmt.Errorf("save gob: %w", err)
	}
	return catalog.WriteManifest(filepath.Join(dir, "manifest.yaml"), m)
}

var csvUnsafe = strings.NewReplacer(",", " ", "\r", " ", "\n", " ")

func writeCSV(path string, records []catalog.Record) error {
	var b strings.Builder
	c := catalog.DefaultColumns
	b.WriteString(strings.Join([]string{
		c.SchoolCode, c.InstitutionCode, c.SchoolName, c.InstitutionName,
		c.Municipality, c.Province, c.ClassLabel,
	}, ","))
	b.WriteByte('\n')
	for _, r := range records {
		fields := []string{
			r.SchoolCode, r.InstitutionCode, r.SchoolName, r.InstitutionName,
			r.Municipality, r.Province, r.ClassLabel,
		}
		for i := range fields {
			fields[i] = csvUnsafe.Replace(fields[i])
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// downloadDir creates a scratch directory under outputDir for one adapter.
func downloadDir(outputDir, adapterID string) (string, error) {
	dir := filepath.Join(outputDir, "_download", adapterID)
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}
