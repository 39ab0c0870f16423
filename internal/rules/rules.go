// Package rules defines the declarative validation rules and their execution.
//
// ORIENTATION CONTRACT: a rule's Check returns a per-row boolean mask where
// true means the row VIOLATES the rule. It is a failure mask, not a validity
// mask. Counting and sampling downstream depend on this direction; do not
// flip it.
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"dq/internal/table"
)

// Severity classifies a rule's findings. Both severities are reported the
// same way; the distinction drives human triage, not pipeline behavior.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Rule pairs an identifier and description with a failure-mask predicate.
//
// Check errors are fatal preconditions (typically a referenced column missing
// from the table); they abort the run rather than becoming findings.
type Rule struct {
	ID          string
	Description string
	Severity    Severity
	Check       func(t *table.Table) ([]bool, error)
}

// Result is the immutable outcome of evaluating one rule against the cleaned
// table. FailedSample holds at most the first five failing rows, complete
// (every column), in original row order.
type Result struct {
	RuleID       string           `json:"rule_id"`
	Description  string           `json:"description"`
	Severity     Severity         `json:"severity"`
	Status       string           `json:"status"` // "PASS" | "FAIL"
	FailedCount  int              `json:"failed_count"`
	FailedSample []map[string]any `json:"failed_sample,omitempty"`
}

const sampleLimit = 5

// Run evaluates the rule against a snapshot of the cleaned table.
//
// Defensive fallback: a mask whose length does not match the row count is
// treated as zero failures instead of aborting the run. This can mask real
// predicate bugs and is preserved deliberately as observed behavior; the
// package tests lock it in.
func (r Rule) Run(t *table.Table) (Result, error) {
	res := Result{
		RuleID:      r.ID,
		Description: r.Description,
		Severity:    r.Severity,
	}

	mask, err := r.Check(t)
	if err != nil {
		return Result{}, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	if len(mask) != t.Len() {
		mask = nil
	}

	for ri, fail := range mask {
		if !fail {
			continue
		}
		res.FailedCount++
		if len(res.FailedSample) < sampleLimit {
			res.FailedSample = append(res.FailedSample, t.RowMap(ri))
		}
	}
	if res.FailedCount == 0 {
		res.Status = "PASS"
		res.FailedSample = nil
	} else {
		res.Status = "FAIL"
	}
	return res, nil
}

// RunAll evaluates every rule in declaration order against the same table
// snapshot. No rule sees another rule's filtered output.
func RunAll(t *table.Table, set []Rule) ([]Result, error) {
	out := make([]Result, 0, len(set))
	for _, r := range set {
		res, err := r.Run(t)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ForDataset returns the fixed, ordered rule set for a dataset kind. Unknown
// kinds are a fatal configuration error: there is no default rule set.
func ForDataset(kind string) ([]Rule, error) {
	switch kind {
	case "sales":
		return salesRules(), nil
	case "leads":
		return leadsRules(), nil
	default:
		return nil, fmt.Errorf("unknown dataset kind %q: no rule set defined", kind)
	}
}

// column resolves a required column, erroring when it is absent. Missing
// columns are precondition violations, not data-quality findings.
func column(t *table.Table, name string) (int, error) {
	ci := t.ColIndex(name)
	if ci < 0 {
		return 0, fmt.Errorf("required column %q is missing", name)
	}
	return ci, nil
}

// numberMask builds a failure mask from a per-value numeric predicate.
// Null and non-numeric cells count as failures.
func numberMask(t *table.Table, col string, bad func(float64) bool) ([]bool, error) {
	ci, err := column(t, col)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, t.Len())
	for ri := range t.Rows {
		v, ok := table.Number(t.Cell(ri, ci))
		mask[ri] = !ok || bad(v)
	}
	return mask, nil
}

// notNullMask fails every row whose cell is null.
func notNullMask(t *table.Table, col string) ([]bool, error) {
	ci, err := column(t, col)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, t.Len())
	for ri := range t.Rows {
		mask[ri] = t.Cell(ri, ci) == nil
	}
	return mask, nil
}

// uniqueMask flags EVERY row whose value occurs more than once — including
// the first occurrence, not just the extras. Nulls group together.
func uniqueMask(t *table.Table, col string) ([]bool, error) {
	ci, err := column(t, col)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, t.Len())
	for ri := range t.Rows {
		counts[table.GroupKey(t.Cell(ri, ci))]++
	}
	mask := make([]bool, t.Len())
	for ri := range t.Rows {
		mask[ri] = counts[table.GroupKey(t.Cell(ri, ci))] > 1
	}
	return mask, nil
}

func salesRules() []Rule {
	return []Rule{
		{
			ID:          "S001_qty_positive",
			Description: "qty must be >= 1",
			Severity:    SeverityError,
			Check: func(t *table.Table) ([]bool, error) {
				return numberMask(t, "qty", func(v float64) bool { return v < 1 })
			},
		},
		{
			ID:          "S002_unit_price_reasonable",
			Description: "unit_price must be between 1,000 and 200,000",
			Severity:    SeverityError,
			Check: func(t *table.Table) ([]bool, error) {
				return numberMask(t, "unit_price", func(v float64) bool { return v < 1000 || v > 200000 })
			},
		},
		{
			ID:          "S003_order_date_present",
			Description: "order_date must be a valid parsed date",
			Severity:    SeverityError,
			Check: func(t *table.Table) ([]bool, error) {
				return notNullMask(t, "order_date")
			},
		},
		{
			ID:          "S004_revenue_consistency",
			Description: "revenue should equal qty * unit_price (tolerance 1 peso)",
			Severity:    SeverityWarn,
			Check: func(t *table.Table) ([]bool, error) {
				qi, err := column(t, "qty")
				if err != nil {
					return nil, err
				}
				pi, err := column(t, "unit_price")
				if err != nil {
					return nil, err
				}
				ri2, err := column(t, "revenue")
				if err != nil {
					return nil, err
				}
				mask := make([]bool, t.Len())
				for ri := range t.Rows {
					rev, ok := table.Number(t.Cell(ri, ri2))
					if !ok {
						mask[ri] = true // null revenue fails
						continue
					}
					q, qok := table.Number(t.Cell(ri, qi))
					p, pok := table.Number(t.Cell(ri, pi))
					if !qok || !pok {
						// Null qty/price makes the expectation incomparable;
						// the row passes here (S001/S002 flag it instead).
						continue
					}
					mask[ri] = math.Abs(q*p-rev) > 1
				}
				return mask, nil
			},
		},
		{
			ID:          "S005_region_not_null",
			Description: "region must not be null",
			Severity:    SeverityWarn,
			Check: func(t *table.Table) ([]bool, error) {
				ci, err := column(t, "region")
				if err != nil {
					return nil, err
				}
				mask := make([]bool, t.Len())
				for ri := range t.Rows {
					v := t.Cell(ri, ci)
					if v == nil {
						mask[ri] = true
						continue
					}
					s, ok := table.Text(v)
					mask[ri] = ok && strings.TrimSpace(s) == ""
				}
				return mask, nil
			},
		},
		{
			ID:          "S006_order_id_unique",
			Description: "order_id must be unique after cleaning",
			Severity:    SeverityError,
			Check: func(t *table.Table) ([]bool, error) {
				return uniqueMask(t, "order_id")
			},
		},
	}
}

// emailRe: non-empty local and domain parts with no '@' or whitespace, and at
// least one dot in the domain.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func leadsRules() []Rule {
	return []Rule{
		{
			ID:          "L001_email_format",
			Description: "email must be valid format",
			Severity:    SeverityError,
			Check: func(t *table.Table) ([]bool, error) {
				ci, err := column(t, "email")
				if err != nil {
					return nil, err
				}
				mask := make([]bool, t.Len())
				for ri := range t.Rows {
					s, ok := table.Text(t.Cell(ri, ci))
					mask[ri] = !ok || !emailRe.MatchString(s)
				}
				return mask, nil
			},
		},
		{
			ID:          "L002_phone_length",
			Description: "phone must have 10 digits (Colombia mobile standard)",
			Severity:    SeverityWarn,
			Check: func(t *table.Table) ([]bool, error) {
				ci, err := column(t, "phone")
				if err != nil {
					return nil, err
				}
				mask := make([]bool, t.Len())
				for ri := range t.Rows {
					s, ok := table.Text(t.Cell(ri, ci))
					mask[ri] = !ok || len(s) != 10
				}
				return mask, nil
			},
		},
		{
			ID:          "L003_created_at_valid",
			Description: "created_at must be a valid parsed date",
			Severity:    SeverityError,
			Check: func(t *table.Table) ([]bool, error) {
				return notNullMask(t, "created_at")
			},
		},
		{
			ID:          "L004_score_range",
			Description: "score must be between 0 and 100",
			Severity:    SeverityWarn,
			Check: func(t *table.Table) ([]bool, error) {
				return numberMask(t, "score", func(v float64) bool { return v < 0 || v > 100 })
			},
		},
		{
			ID:          "L005_lead_id_unique",
			Description: "lead_id must be unique after cleaning",
			Severity:    SeverityError,
			Check: func(t *table.Table) ([]bool, error) {
				return uniqueMask(t, "lead_id")
			},
		},
	}
}
