// CLAUDE:SUMMARY Manifest YAML schema describing a dataset directory: source metadata, CSV format and column mapping.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes a dataset: its source, format, and which header names
// hold each record field.
type Manifest struct {
	ID        string     `yaml:"id" json:"id"`
	Version   string     `yaml:"version" json:"version"`
	Source    string     `yaml:"source" json:"source"`
	SourceURL string     `yaml:"source_url" json:"source_url,omitempty"`
	License   string     `yaml:"license" json:"license"`
	DataFile  string     `yaml:"data_file" json:"data_file"`
	Format    FormatSpec `yaml:"format" json:"-"`
	Columns   Columns    `yaml:"columns" json:"-"`
}

// FormatSpec describes the line-oriented tabular layout.
type FormatSpec struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

// Columns maps each record field to a header name of the source.
type Columns struct {
	SchoolCode      string `yaml:"school_code"`
	InstitutionCode string `yaml:"institution_code"`
	SchoolName      string `yaml:"school_name"`
	InstitutionName string `yaml:"institution_name"`
	Municipality    string `yaml:"municipality"`
	Province        string `yaml:"province"`
	ClassLabel      string `yaml:"class_label"`
}

// DefaultColumns are the header names of the MIUR class export.
var DefaultColumns = Columns{
	SchoolCode:      "CODICESCUOLA",
	InstitutionCode: "CODICEISTITUTORIFERIMENTO",
	SchoolName:      "DENOMINAZIONESCUOLA",
	InstitutionName: "DENOMINAZIONEISTITUTORIFERIMENTO",
	Municipality:    "DESCRIZIONECOMUNE",
	Province:        "PROVINCIA",
	ClassLabel:      "CLASSE_DISPLAY",
}

// DefaultManifest returns the manifest used when a dataset directory has none.
func DefaultManifest() *Manifest {
	m := &Manifest{ID: "classi"}
	m.applyDefaults()
	return m
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	m.applyDefaults()
	return &m, nil
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Delimiter returns the field separator, comma unless the manifest says otherwise.
func (m *Manifest) Delimiter() string {
	if m.Format.Delimiter == "" {
		return ","
	}
	return m.Format.Delimiter
}

func (m *Manifest) applyDefaults() {
	if m.DataFile == "" {
		m.DataFile = "data.csv"
	}
	c := &m.Columns
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.SchoolCode, DefaultColumns.SchoolCode)
	fill(&c.InstitutionCode, DefaultColumns.InstitutionCode)
	fill(&c.SchoolName, DefaultColumns.SchoolName)
	fill(&c.InstitutionName, DefaultColumns.InstitutionName)
	fill(&c.Municipality, DefaultColumns.Municipality)
	fill(&c.Province, DefaultColumns.Province)
	fill(&c.ClassLabel, DefaultColumns.ClassLabel)
}

// required lists the field names and their header names in record order.
func (c Columns) required() []column {
	return []column{
		{"schoolCode", c.SchoolCode},
		{"institutionCode", c.InstitutionCode},
		{"schoolName", c.SchoolName},
		{"institutionName", c.InstitutionName},
		{"municipality", c.Municipality},
		{"province", c.Province},
		{"classLabel", c.ClassLabel},
	}
}

type column struct {
	field  string
	header string
}

// ErrEmptySource is returned when the tabular source has no header line.
var ErrEmptySource = errors.New("empty source: no header line")

// MissingColumnError reports a required header absent from the source.
type MissingColumnError struct {
	Field  string // record field, e.g. "schoolCode"
	Column string // expected header name, e.g. "CODICESCUOLA"
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q (%s) in source header", e.Column, e.Field)
}
