package catalog

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ParseRecords reads a line-oriented tabular source described by m.
//
// Lines end in \n or \r\n and blank lines are skipped. The first line is the
// header; fields are mapped by header name. Rows are split on the delimiter
// with no quote handling, so a delimiter inside a value splits it: sources
// must not contain one. Rows shorter than the header get empty trailing fields.
func ParseRecords(r io.Reader, m *Manifest) ([]Record, error) {
	if m == nil {
		m = DefaultManifest()
	}

	// Transcode non-UTF-8 encodings declared in the manifest.
	if enc := m.Format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	lines := splitLines(string(data))
	if len(lines) == 0 {
		return nil, ErrEmptySource
	}

	delim := m.Delimiter()
	header := strings.Split(strings.TrimPrefix(lines[0], "\ufeff"), delim)
	headerIdx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, seen := headerIdx[h]; !seen {
			headerIdx[h] = i
		}
	}

	cols := m.Columns.required()
	idx := make([]int, len(cols))
	for i, c := range cols {
		pos, ok := headerIdx[c.header]
		if !ok {
			return nil, &MissingColumnError{Field: c.field, Column: c.header}
		}
		idx[i] = pos
	}

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := strings.Split(line, delim)
		field := func(i int) string {
			if idx[i] >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx[i]])
		}
		records = append(records, Record{
			SchoolCode:      field(0),
			InstitutionCode: field(1),
			SchoolName:      field(2),
			InstitutionName: field(3),
			Municipality:    field(4),
			Province:        field(5),
			ClassLabel:      field(6),
		})
	}
	return records, nil
}

// splitLines splits on either line ending and drops blank lines.
func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := raw[:0]
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
