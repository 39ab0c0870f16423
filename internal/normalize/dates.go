package normalize

import (
	"strings"
	"time"

	"dq/internal/runlog"
	"dq/internal/table"
)

// Layout sets for the two competing interpretations of ambiguous numeric
// dates. Unambiguous ISO forms appear in both sets so they parse identically
// under either interpretation; only the day/month order differs.
//
// Go's non-padded layout digits ("2", "1") accept one- and two-digit fields,
// so "3/4/2024" and "03/04/2024" both parse.
var (
	dayFirstLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2/1/2006",
		"2-1-2006",
		"2.1.2006",
		"2/1/2006 15:04",
		"2/1/2006 15:04:05",
	}
	monthFirstLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"1/2/2006",
		"1-2-2006",
		"1.2.2006",
		"1/2/2006 15:04",
		"1/2/2006 15:04:05",
	}
)

func parseLoose(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, lay := range layouts {
		if ts, err := time.Parse(lay, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseColumn applies one layout set to a whole column and returns the parsed
// cells plus the success rate (fraction of rows that ended up non-null —
// originally-null cells count against the rate, same denominator for both
// candidates).
func parseColumn(t *table.Table, ci int, layouts []string) ([]any, float64) {
	out := make([]any, t.Len())
	var ok int
	for ri := range t.Rows {
		switch v := t.Cell(ri, ci).(type) {
		case time.Time:
			out[ri] = v // already parsed; coercion is idempotent
			ok++
		case string:
			if ts, parsed := parseLoose(v, layouts); parsed {
				out[ri] = ts
				ok++
			}
		}
	}
	if t.Len() == 0 {
		return out, 0
	}
	return out, float64(ok) / float64(t.Len())
}

// DatesFlex parses a free-form date column by trying a day-first and a
// month-first interpretation and committing to the one with the higher parse
// success rate. The choice is global for the column: every cell is parsed
// under the winning interpretation, even values that are ambiguous on their
// own. Ties go to day-first (it is evaluated first and wins on >=).
//
// Unparseable cells become null. A missing column is a no-op.
func DatesFlex(t *table.Table, col string, log *runlog.Logger) {
	ci := t.ColIndex(col)
	if ci < 0 {
		return
	}

	dayCells, dayRate := parseColumn(t, ci, dayFirstLayouts)
	monthCells, monthRate := parseColumn(t, ci, monthFirstLayouts)

	cells, chosen := dayCells, dayRate
	if dayRate < monthRate {
		cells, chosen = monthCells, monthRate
	}
	for ri := range t.Rows {
		t.SetCell(ri, ci, cells[ri])
	}

	log.Infof("Parsed dates in %s: success_rate=%.1f%% (dayfirst=%.1f%% monthfirst=%.1f%%)",
		col, 100*chosen, 100*dayRate, 100*monthRate)
}
