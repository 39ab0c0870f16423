// Package csv reads raw datasets into table.Table values and writes cleaned
// tables back out.
//
// Reading is deliberately dumb: every cell comes in as text (or null) so the
// normalizer owns all type decisions. Empty cells and the usual NA spellings
// become nil.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"dq/internal/table"
)

// naTokens are cell literals treated as missing, matching the raw-load
// convention of the upstream exports this pipeline consumes.
var naTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"null": {},
	"None": {},
}

// ReadTable parses a whole CSV stream into memory.
//
// Header handling:
//   - a UTF-8 BOM on the first header cell is stripped
//   - headers are trimmed, lowercased, and spaces become underscores
//
// Cell handling:
//   - values are trimmed
//   - empty and NA-token cells become nil
//
// Records with a field count different from the header are an error: raw
// exports with ragged rows are malformed input, not a data-quality finding.
func ReadTable(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.TrimSpace(h)
		cols[i] = strings.ReplaceAll(strings.ToLower(h), " ", "_")
	}

	t := table.New(cols)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv read line %d: %w", line, err)
		}
		if len(rec) != len(cols) {
			return nil, fmt.Errorf("csv line %d: got %d fields, want %d", line, len(rec), len(cols))
		}
		row := make([]any, len(cols))
		for i, v := range rec {
			v = strings.TrimSpace(v)
			if _, na := naTokens[v]; na {
				row[i] = nil
			} else {
				row[i] = v
			}
		}
		t.Append(row)
	}
}

// ReadFile is ReadTable over a file path.
func ReadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// WriteTable writes the table as CSV: header first, column order preserved,
// no index column. Cells render via table.Render (nulls become empty fields).
func WriteTable(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = table.Render(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to a new file at path.
//
// The write is not atomic: a crash mid-write can leave a partial file. Run-id
// scoped filenames keep concurrent runs from clobbering each other.
func WriteFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := WriteTable(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
