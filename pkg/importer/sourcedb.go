package importer

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Source represents a row from the import_sources table.
type Source struct {
	AdapterID   string
	DatasetID   string
	Description string
	SourceURL   string
	License     string
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	LastImport  *int64 // unix time of the last successful import
	LastRecords *int   // records written by that import
	// LastModified and Changed come from the last check; see CheckResult.
	LastModified *string
	Changed      *bool
	UpdatedAt    int64
}

// SourceDB manages the import_sources SQLite table: where each adapter
// downloads from and whether that URL answered at the last check.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens (or creates) the SQLite database at path and ensures the
// import_sources table exists.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS import_sources (
		adapter_id   TEXT PRIMARY KEY,
		dataset_id   TEXT NOT NULL,
		description  TEXT NOT NULL,
		source_url   TEXT NOT NULL,
		license      TEXT NOT NULL DEFAULT '',
		last_check   INTEGER,
		last_status  INTEGER,
		last_error   TEXT,
		last_import  INTEGER,
		last_records INTEGER,
		last_modified TEXT,
		upstream_changed INTEGER,
		updated_at   INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_sources table: %w", err)
	}

	return &SourceDB{db: db}, nil
}

// Close closes the SQLite connection.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts default rows for each adapter. Existing rows are left
// untouched (INSERT OR IGNORE) so manual URL overrides survive restarts.
func (s *SourceDB) Seed(adapters []Adapter) error {
	const q = `INSERT OR IGNORE INTO import_sources
		(adapter_id, dataset_id, description, source_url, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	for _, a := range adapters {
		if _, err := s.db.Exec(q, a.ID(), a.DatasetID(), a.Description(), a.DefaultURL(), a.License(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return nil
}

// GetURL returns the current source URL for a given adapter ID.
func (s *SourceDB) GetURL(adapterID string) (string, error) {
	var url string
	err := s.db.QueryRow(`SELECT source_url FROM import_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL updates the source URL for a given adapter and records the change timestamp.
func (s *SourceDB) SetURL(adapterID, url string) error {
	res, err := s.db.Exec(
		`UPDATE import_sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", adapterID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("adapter %s not found in import_sources", adapterID)
	}
	return nil
}

// ResolveURL returns the URL to import adapterID from. A non-empty override
// is stored first so later imports and checks reuse it.
func (s *SourceDB) ResolveURL(adapterID, override string) (string, error) {
	if override != "" {
		if err := s.SetURL(adapterID, override); err != nil {
			return "", err
		}
		return override, nil
	}
	url, err := s.GetURL(adapterID)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", fmt.Errorf("%s: %w (use --url)", adapterID, ErrNoSourceURL)
	}
	return url, nil
}

// RecordImport persists the outcome of a successful import. The dataset is
// now current, so any pending upstream change is cleared.
func (s *SourceDB) RecordImport(adapterID string, records int) error {
	_, err := s.db.Exec(
		`UPDATE import_sources SET last_import = ?, last_records = ?, upstream_changed = NULL WHERE adapter_id = ?`,
		time.Now().Unix(), records, adapterID,
	)
	if err != nil {
		return fmt.Errorf("record import for %s: %w", adapterID, err)
	}
	return nil
}

// UpdateCheck persists the result of an availability check.
func (s *SourceDB) UpdateCheck(adapterID string, res CheckResult) error {
	_, err := s.db.Exec(
		`UPDATE import_sources SET last_check = ?, last_status = ?, last_error = ?,
			last_modified = ?, upstream_changed = ? WHERE adapter_id = ?`,
		time.Now().Unix(), res.Status, nullString(res.Err), nullString(res.LastModified), res.Changed, adapterID,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", adapterID, err)
	}
	return nil
}

func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// ListSources returns all rows from import_sources ordered by adapter_id.
func (s *SourceDB) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT adapter_id, dataset_id, description, source_url, license,
		last_check, last_status, last_error, last_import, last_records,
		last_modified, upstream_changed, updated_at
		FROM import_sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.AdapterID, &src.DatasetID, &src.Description, &src.SourceURL,
			&src.License, &src.LastCheck, &src.LastStatus, &src.LastError,
			&src.LastImport, &src.LastRecords, &src.LastModified, &src.Changed,
			&src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
