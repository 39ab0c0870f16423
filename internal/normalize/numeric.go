package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"dq/internal/runlog"
	"dq/internal/table"
)

// nonNumericRe strips everything that cannot be part of a number: currency
// symbols, spaces, letters. Minus, dot, and comma survive.
var nonNumericRe = regexp.MustCompile(`[^\d\-.,]+`)

func nullRate(t *table.Table, ci int) float64 {
	if t.Len() == 0 {
		return 0
	}
	var n int
	for ri := range t.Rows {
		if t.Cell(ri, ci) == nil {
			n++
		}
	}
	return float64(n) / float64(t.Len())
}

// Numeric coerces the designated columns to float64 in place.
//
// Per cell: strip non-numeric characters, treat a comma as the decimal
// separator (comma → dot), parse. Unparseable cells become null. Cells that
// are already float64 pass through unchanged, so coercion is idempotent.
//
// If a column coerces to zero numeric values despite having non-null input,
// the original cells are restored and the column stays text-typed. That keeps
// the data recoverable for format-specific retries (the sales revenue
// thousands-separator path keys on exactly this state).
//
// Before/after null rates are logged per column. Missing columns are skipped.
func Numeric(t *table.Table, cols []string, log *runlog.Logger) {
	for _, name := range cols {
		ci := t.ColIndex(name)
		if ci < 0 {
			continue
		}

		before := nullRate(t, ci)
		orig := make([]any, t.Len())
		var parsed, nonNull int

		for ri := range t.Rows {
			v := t.Cell(ri, ci)
			orig[ri] = v
			if v == nil {
				continue
			}
			nonNull++
			switch x := v.(type) {
			case float64:
				parsed++
			case string:
				s := nonNumericRe.ReplaceAllString(x, "")
				s = strings.ReplaceAll(s, ",", ".")
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					t.SetCell(ri, ci, f)
					parsed++
				} else {
					t.SetCell(ri, ci, nil)
				}
			default:
				t.SetCell(ri, ci, nil)
			}
		}

		if parsed == 0 && nonNull > 0 {
			for ri := range t.Rows {
				t.SetCell(ri, ci, orig[ri])
			}
			log.Warnf("Coerce numeric %s: no values parsed, column left as text", name)
			continue
		}

		log.Infof("Coerced numeric %s: na_rate %.1f%% -> %.1f%%",
			name, 100*before, 100*nullRate(t, ci))
	}
}
