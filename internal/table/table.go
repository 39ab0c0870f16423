// Package table provides the in-memory tabular model the cleaning and
// validation stages operate on.
//
// A Table is an ordered set of columns plus rows of dynamically typed cells.
// Cell values are restricted to a small closed set:
//
//   - nil        (missing / null)
//   - string     (raw or normalized text)
//   - float64    (coerced numerics)
//   - time.Time  (parsed dates and timestamps)
//
// The whole dataset lives in memory for the duration of a run. This is a
// deliberate batch design: every stage sees the full table, there is no
// streaming or chunking, and peak memory is O(dataset size).
package table

import (
	"fmt"
	"strconv"
	"time"
)

// Table is an ordered, column-named grid of cells.
//
// Invariants:
//   - len(row) == len(Columns) for every row.
//   - Column names are unique (enforced at construction by the CSV reader's
//     header normalization; Table itself does not re-check on Append).
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given column order.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Append adds one row. The row must already be aligned to t.Columns.
func (t *Table) Append(row []any) {
	t.Rows = append(t.Rows, row)
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.Rows) }

// ColIndex returns the position of a column, or -1 when absent.
func (t *Table) ColIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool { return t.ColIndex(name) >= 0 }

// Cell returns the value at (row, column index). Callers are expected to hold
// a valid index from ColIndex.
func (t *Table) Cell(row, col int) any { return t.Rows[row][col] }

// SetCell overwrites the value at (row, column index).
func (t *Table) SetCell(row, col int, v any) { t.Rows[row][col] = v }

// Clone returns a deep copy of the table (fresh row slices; cell values are
// immutable by convention so they are shared).
//
// The pipeline clones the raw table before cleaning so the report can profile
// raw and clean states independently.
func (t *Table) Clone() *Table {
	out := New(t.Columns)
	out.Rows = make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(r))
		copy(row, r)
		out.Rows[i] = row
	}
	return out
}

// DType labels describe the dominant cell type of a column. They are loose,
// human-oriented labels for profiling and dispatch, not a type system.
const (
	DTypeEmpty = "empty" // no non-null cells
	DTypeText  = "text"
	DTypeFloat = "float"
	DTypeDate  = "date"
	DTypeMixed = "mixed"
)

// DType scans a column and returns its label. A column is float/date/text
// only when every non-null cell has that type; otherwise it is mixed.
func (t *Table) DType(col int) string {
	var seen bool
	allStr, allNum, allTime := true, true, true
	for _, r := range t.Rows {
		v := r[col]
		if v == nil {
			continue
		}
		seen = true
		switch v.(type) {
		case string:
			allNum, allTime = false, false
		case float64:
			allStr, allTime = false, false
		case time.Time:
			allStr, allNum = false, false
		default:
			allStr, allNum, allTime = false, false, false
		}
	}
	switch {
	case !seen:
		return DTypeEmpty
	case allNum:
		return DTypeFloat
	case allTime:
		return DTypeDate
	case allStr:
		return DTypeText
	default:
		return DTypeMixed
	}
}

// IsNumeric reports whether a column holds at least one float64 and no
// string cells. An all-null column is not numeric.
func (t *Table) IsNumeric(col int) bool {
	return t.DType(col) == DTypeFloat
}

// Number extracts a float64 cell. ok is false for null and non-numeric cells.
func Number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// Text extracts a string cell. ok is false for null and non-string cells.
func Text(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Render converts a cell to its canonical text form, used by the CSV writer,
// report samples, and dedupe/uniqueness grouping keys.
//
// Conventions:
//   - nil renders as the empty string
//   - floats use the shortest decimal that round-trips
//   - midnight timestamps render as a bare date
func Render(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

// GroupKey renders a cell for grouping (dedupe, uniqueness checks).
// Null maps to a dedicated sentinel so a missing value and an empty string
// never collapse into the same group.
func GroupKey(v any) string {
	if v == nil {
		return "\x00"
	}
	return Render(v)
}

// RowMap returns one row as a column→value map (report sample rendering).
func (t *Table) RowMap(row int) map[string]any {
	m := make(map[string]any, len(t.Columns))
	for i, c := range t.Columns {
		m[c] = t.Rows[row][i]
	}
	return m
}
