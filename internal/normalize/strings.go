// Package normalize implements the cleaning stage: string normalization,
// flexible date parsing, numeric coercion, deduplication, and the per-dataset
// dispatch that sequences them.
//
// Error policy: malformed individual values never abort a run — they coerce
// to null and are logged in aggregate. The only errors returned are missing
// required columns on a dataset-specific path, which are fatal preconditions.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dq/internal/table"
)

var innerSpaceRe = regexp.MustCompile(`\s+`)

// Casing is keyed by column name: categorical columns are lowercased,
// proper-noun columns are lowercased then title-cased. The title caser
// preserves non-ASCII letters (Bogotá stays Bogotá).
var (
	lowerCols = map[string]struct{}{"channel": {}, "source": {}, "status": {}}
	titleCols = map[string]struct{}{"city": {}, "region": {}, "product": {}}
)

// Strings normalizes the designated text columns in place: trim, collapse
// internal whitespace runs to a single space, then apply the name-based
// casing rules. Columns absent from the table are skipped; non-string cells
// (including nulls) are left untouched.
func Strings(t *table.Table, cols []string) {
	// A cases.Caser is stateful and not safe for concurrent use; build one
	// per call.
	titleCaser := cases.Title(language.Und)
	for _, name := range cols {
		ci := t.ColIndex(name)
		if ci < 0 {
			continue
		}
		_, lower := lowerCols[name]
		_, title := titleCols[name]
		for ri := range t.Rows {
			s, ok := table.Text(t.Cell(ri, ci))
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			s = innerSpaceRe.ReplaceAllString(s, " ")
			if lower {
				s = strings.ToLower(s)
			}
			if title {
				s = titleCaser.String(strings.ToLower(s))
			}
			t.SetCell(ri, ci, s)
		}
	}
}
