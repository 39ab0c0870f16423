package normalize

import (
	"fmt"
	"strings"

	"dq/internal/runlog"
	"dq/internal/table"
)

// Dataset kinds form a closed variant set. Anything else takes the generic
// cleaning path (and later fails rule-set selection).
const (
	KindSales = "sales"
	KindLeads = "leads"
)

// cleaners is the per-kind cleaning strategy table. Unknown kinds fall back
// to cleanGeneric.
var cleaners = map[string]func(*table.Table, *runlog.Logger) error{
	KindSales: cleanSales,
	KindLeads: cleanLeads,
}

// PrimaryKey returns the dedupe key column for a dataset kind, or "" when the
// kind has none.
func PrimaryKey(kind string) string {
	switch kind {
	case KindSales:
		return "order_id"
	case KindLeads:
		return "lead_id"
	default:
		return ""
	}
}

// Clean runs the dataset-specific normalization sequence in place.
//
// Returned errors are fatal preconditions (a required column is absent from
// the input), never per-value parse failures.
func Clean(t *table.Table, kind string, log *runlog.Logger) error {
	log.Infof("Cleaning dataset=%s, rows=%d, cols=%d", kind, t.Len(), len(t.Columns))
	fn, ok := cleaners[kind]
	if !ok {
		fn = cleanGeneric
	}
	return fn(t, log)
}

func cleanSales(t *table.Table, log *runlog.Logger) error {
	Strings(t, []string{"region", "channel", "product", "notes"})
	DatesFlex(t, "order_date", log)
	Numeric(t, []string{"order_id", "customer_id", "qty", "unit_price", "revenue"}, log)

	// Revenue sometimes arrives with dot as thousands separator and comma as
	// decimal separator; generic coercion leaves such a column text-typed.
	rev := t.ColIndex("revenue")
	if rev < 0 {
		return fmt.Errorf("sales cleaning: required column %q is missing", "revenue")
	}
	if !t.IsNumeric(rev) {
		for ri := range t.Rows {
			if s, ok := table.Text(t.Cell(ri, rev)); ok {
				s = strings.ReplaceAll(s, ".", "")
				s = strings.ReplaceAll(s, ",", ".")
				t.SetCell(ri, rev, s)
			}
		}
		Numeric(t, []string{"revenue"}, log)
	}
	return nil
}

func cleanLeads(t *table.Table, log *runlog.Logger) error {
	Strings(t, []string{"source", "status", "city", "notes", "email"})
	DatesFlex(t, "created_at", log)
	Numeric(t, []string{"lead_id", "score"}, log)

	// Phone stays text so leading zeros survive; digits only.
	phone := t.ColIndex("phone")
	if phone < 0 {
		return fmt.Errorf("leads cleaning: required column %q is missing", "phone")
	}
	for ri := range t.Rows {
		if s, ok := table.Text(t.Cell(ri, phone)); ok {
			t.SetCell(ri, phone, digitsOnly(s))
		}
	}
	return nil
}

// cleanGeneric is the fallback for unrecognized dataset kinds: normalize
// every text-typed column and attempt date parsing on every column whose name
// looks temporal.
func cleanGeneric(t *table.Table, log *runlog.Logger) error {
	var textCols []string
	for i, c := range t.Columns {
		if t.DType(i) == table.DTypeText {
			textCols = append(textCols, c)
		}
	}
	Strings(t, textCols)

	for _, c := range t.Columns {
		lc := strings.ToLower(c)
		if strings.HasSuffix(lc, "date") || strings.HasSuffix(lc, "_at") || strings.HasSuffix(lc, "timestamp") {
			DatesFlex(t, c, log)
		}
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
