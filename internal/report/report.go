// Package report aggregates cleaning statistics and rule results into a
// quality report and renders it as Markdown, HTML, and JSON.
//
// All three artifacts derive from the same in-memory Report value; nothing
// but formatting differs between them.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"dq/internal/rules"
	"dq/internal/table"
)

// Profile summarizes one column for data-quality triage.
type Profile struct {
	Column   string   `json:"column"`
	DType    string   `json:"dtype"`
	NullRate float64  `json:"null_rate"`
	Distinct int      `json:"distinct"`
	Samples  []string `json:"sample_values"`
}

// Meta is the run metadata block. Field order here is the rendering order.
type Meta struct {
	Dataset     string `json:"dataset"`
	RunID       string `json:"run_id"`
	GeneratedAt string `json:"generated_at"`
	RawRows     int    `json:"raw_rows"`
	CleanRows   int    `json:"clean_rows"`
	RawCols     int    `json:"raw_cols"`
	CleanCols   int    `json:"clean_cols"`
	FailedRules int    `json:"failed_rules"`
	TotalRules  int    `json:"total_rules"`
}

// Artifacts lists the run's file outputs, embedded in the report so a reader
// can locate everything from the report alone.
type Artifacts struct {
	InputPath string `json:"input_path"`
	CleanPath string `json:"clean_path"`
	LogPath   string `json:"log_path"`
}

// Report is the complete quality report, built once at the end of a run and
// immutable afterward.
type Report struct {
	Meta         Meta           `json:"meta"`
	Results      []rules.Result `json:"results"`
	RawProfile   []Profile      `json:"raw_profile"`
	CleanProfile []Profile      `json:"clean_profile"`
	Artifacts    Artifacts      `json:"artifacts"`

	// Columns preserves the cleaned table's column order for rendering
	// failed-sample rows.
	Columns []string `json:"columns"`
}

const profileSampleLimit = 3

// Summarize computes per-column profiles: dtype label, null rate, distinct
// non-null count, and up to three example values in first-encountered order
// after dropping nulls. Profiles are sorted by null rate descending then
// distinct ascending, so the worst-quality columns surface first; the sort is
// stable, leaving ties in original column order.
func Summarize(t *table.Table) []Profile {
	n := t.Len()
	out := make([]Profile, 0, len(t.Columns))
	for ci, name := range t.Columns {
		p := Profile{Column: name, DType: t.DType(ci)}
		distinct := make(map[string]struct{})
		var nulls int
		for ri := range t.Rows {
			v := t.Cell(ri, ci)
			if v == nil {
				nulls++
				continue
			}
			s := table.Render(v)
			distinct[s] = struct{}{}
			if len(p.Samples) < profileSampleLimit {
				p.Samples = append(p.Samples, s)
			}
		}
		if n > 0 {
			p.NullRate = float64(nulls) / float64(n)
		}
		p.Distinct = len(distinct)
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NullRate != out[j].NullRate {
			return out[i].NullRate > out[j].NullRate
		}
		return out[i].Distinct < out[j].Distinct
	})
	return out
}

// Build assembles the report from the raw and cleaned tables plus the ordered
// rule results.
func Build(dataset, runID string, raw, clean *table.Table, results []rules.Result, art Artifacts, now time.Time) *Report {
	var failed int
	for _, r := range results {
		if r.Status == "FAIL" {
			failed++
		}
	}
	return &Report{
		Meta: Meta{
			Dataset:     dataset,
			RunID:       runID,
			GeneratedAt: now.Format("2006-01-02T15:04:05"),
			RawRows:     raw.Len(),
			CleanRows:   clean.Len(),
			RawCols:     len(raw.Columns),
			CleanCols:   len(clean.Columns),
			FailedRules: failed,
			TotalRules:  len(results),
		},
		Results:      results,
		RawProfile:   Summarize(raw),
		CleanProfile: Summarize(clean),
		Artifacts:    art,
		Columns:      clean.Columns,
	}
}

// Failed returns the results with status FAIL, in declaration order.
func (r *Report) Failed() []rules.Result {
	var out []rules.Result
	for _, res := range r.Results {
		if res.Status == "FAIL" {
			out = append(out, res)
		}
	}
	return out
}

// WriteJSON writes the machine-readable form of the report.
func (r *Report) WriteJSON(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
