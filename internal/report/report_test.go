package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dq/internal/rules"
	"dq/internal/table"
)

func fixtureTables() (raw, clean *table.Table) {
	raw = table.New([]string{"lead_id", "email", "score"})
	raw.Append([]any{"1", "ana@example.com", "50"})
	raw.Append([]any{"2", "not-an-email", "150"})
	raw.Append([]any{"2", nil, nil})

	clean = table.New([]string{"lead_id", "email", "score"})
	clean.Append([]any{1.0, "ana@example.com", 50.0})
	clean.Append([]any{2.0, "not-an-email", 150.0})
	return raw, clean
}

func fixtureResults() []rules.Result {
	return []rules.Result{
		{
			RuleID:      "L001_email_format",
			Description: "email must be valid format",
			Severity:    rules.SeverityError,
			Status:      "FAIL",
			FailedCount: 1,
			FailedSample: []map[string]any{
				{"lead_id": 2.0, "email": "not-an-email", "score": 150.0},
			},
		},
		{
			RuleID:      "L004_score_range",
			Description: "score must be between 0 and 100",
			Severity:    rules.SeverityWarn,
			Status:      "FAIL",
			FailedCount: 1,
			FailedSample: []map[string]any{
				{"lead_id": 2.0, "email": "not-an-email", "score": 150.0},
			},
		},
		{
			RuleID:      "L005_lead_id_unique",
			Description: "lead_id must be unique after cleaning",
			Severity:    rules.SeverityError,
			Status:      "PASS",
		},
	}
}

func fixtureReport() *Report {
	raw, clean := fixtureTables()
	return Build("leads", "leads_20240301_120000", raw, clean, fixtureResults(),
		Artifacts{
			InputPath: "data/leads.csv",
			CleanPath: "outputs/clean/leads_clean_leads_20240301_120000.csv",
			LogPath:   "outputs/logs/run_leads_20240301_120000.log",
		},
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

//
// Summarize
//

// TestSummarizeOrdering: worst columns first — null rate descending, then
// distinct ascending, stable for ties.
func TestSummarizeOrdering(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"a", "b", "c"})
	tab.Append([]any{"x", nil, "p"})
	tab.Append([]any{"x", nil, "q"})
	tab.Append([]any{"y", "v", "r"})

	ps := Summarize(tab)
	if ps[0].Column != "b" {
		t.Fatalf("highest-null column first: got %q", ps[0].Column)
	}
	// a and c tie on null rate (0); a has fewer distinct values.
	if ps[1].Column != "a" || ps[2].Column != "c" {
		t.Fatalf("tie-break by distinct ascending: got %q, %q", ps[1].Column, ps[2].Column)
	}
	if ps[0].NullRate != 2.0/3.0 {
		t.Fatalf("null_rate = %v, want 2/3", ps[0].NullRate)
	}
	if ps[1].Distinct != 2 || ps[2].Distinct != 3 {
		t.Fatalf("distinct = %d, %d, want 2, 3", ps[1].Distinct, ps[2].Distinct)
	}
}

// TestSummarizeSamples: at most three non-null values in first-encountered
// order, rendered as strings.
func TestSummarizeSamples(t *testing.T) {
	t.Parallel()

	tab := table.New([]string{"v"})
	for _, c := range []any{nil, 1.5, 2.0, nil, 3.0, 4.0} {
		tab.Append([]any{c})
	}
	ps := Summarize(tab)
	want := []string{"1.5", "2", "3"}
	if len(ps[0].Samples) != len(want) {
		t.Fatalf("samples = %v, want %v", ps[0].Samples, want)
	}
	for i, s := range want {
		if ps[0].Samples[i] != s {
			t.Fatalf("samples = %v, want %v", ps[0].Samples, want)
		}
	}
	if ps[0].DType != table.DTypeFloat {
		t.Fatalf("dtype = %q, want %q", ps[0].DType, table.DTypeFloat)
	}
}

func TestSummarizeEmptyTable(t *testing.T) {
	t.Parallel()

	ps := Summarize(table.New([]string{"a"}))
	if len(ps) != 1 || ps[0].NullRate != 0 || ps[0].Distinct != 0 {
		t.Fatalf("empty-table profile = %+v", ps)
	}
}

//
// Build
//

func TestBuildMeta(t *testing.T) {
	t.Parallel()

	r := fixtureReport()
	m := r.Meta
	if m.Dataset != "leads" || m.RunID != "leads_20240301_120000" {
		t.Fatalf("meta identity wrong: %+v", m)
	}
	if m.GeneratedAt != "2024-03-01T12:00:00" {
		t.Fatalf("generated_at = %q", m.GeneratedAt)
	}
	if m.RawRows != 3 || m.CleanRows != 2 || m.RawCols != 3 || m.CleanCols != 3 {
		t.Fatalf("shape wrong: %+v", m)
	}
	if m.FailedRules != 2 || m.TotalRules != 3 {
		t.Fatalf("rule counts wrong: %+v", m)
	}
	if len(r.Failed()) != 2 {
		t.Fatalf("Failed() = %d results, want 2", len(r.Failed()))
	}
}

//
// Markdown
//

func TestMarkdownContent(t *testing.T) {
	t.Parallel()

	md := fixtureReport().Markdown()

	for _, want := range []string{
		"# Data Quality Report — leads",
		"- **run_id**: leads_20240301_120000",
		"- **failed_rules**: 2",
		"## Validation results",
		"L001_email_format",
		"### Failed samples (up to 5 rows per rule)",
		"not-an-email",
		"## Column profile (raw)",
		"## Column profile (clean)",
		"- Clean output: `outputs/clean/leads_clean_leads_20240301_120000.csv`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	// Passing rules appear in the results table but never get a sample block.
	if strings.Contains(md, "#### L005_lead_id_unique") {
		t.Error("passing rule must not have a failed-samples section")
	}
}

// TestMarkdownTablePadding: pipe-table cells pad by display width, so columns
// align even with multi-byte sample values.
func TestMarkdownTablePadding(t *testing.T) {
	t.Parallel()

	s := mdTable([]string{"city", "n"}, [][]string{{"Bogotá", "1"}, {"x", "22"}})
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[1] != "|--------|----|" {
		t.Fatalf("divider = %q", lines[1])
	}
	if lines[2] != "| Bogotá | 1  |" {
		t.Fatalf("row = %q", lines[2])
	}
}

//
// HTML
//

// TestHTMLContentEquivalence parses the HTML artifact and checks it carries
// the same facts as the Markdown rendering: every rule row, the badge classes,
// per-rule failed samples, and both profiles.
func TestHTMLContentEquivalence(t *testing.T) {
	t.Parallel()

	r := fixtureReport()
	s, err := r.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	rows := doc.Find("#results tbody tr")
	if rows.Length() != len(r.Results) {
		t.Fatalf("results rows = %d, want %d", rows.Length(), len(r.Results))
	}
	rows.Each(func(i int, sel *goquery.Selection) {
		res := r.Results[i]
		if got := sel.Find("td").First().Text(); got != res.RuleID {
			t.Errorf("row %d rule = %q, want %q", i, got, res.RuleID)
		}
		wantClass := "badge-fail"
		if res.Status == "PASS" {
			wantClass = "badge-pass"
		}
		if sel.Find("td."+wantClass).Length() != 1 {
			t.Errorf("row %d missing status class %q", i, wantClass)
		}
	})

	// One sample table per failed rule, with the clean column order.
	samples := doc.Find("table.failed-sample")
	if samples.Length() != 2 {
		t.Fatalf("failed-sample tables = %d, want 2", samples.Length())
	}
	var headers []string
	samples.First().Find("thead th").Each(func(_ int, sel *goquery.Selection) {
		headers = append(headers, sel.Text())
	})
	if strings.Join(headers, ",") != strings.Join(r.Columns, ",") {
		t.Fatalf("sample headers = %v, want clean column order %v", headers, r.Columns)
	}
	if got := samples.First().Find("tbody td").Eq(1).Text(); got != "not-an-email" {
		t.Fatalf("sample cell = %q, want the offending email", got)
	}

	for _, id := range []string{"#profile-raw", "#profile-clean"} {
		if doc.Find(id+" tbody tr").Length() != 3 {
			t.Fatalf("%s rows = %d, want 3", id, doc.Find(id+" tbody tr").Length())
		}
	}

	if !strings.Contains(doc.Find("body").Text(), r.Artifacts.CleanPath) {
		t.Fatal("artifacts block missing clean path")
	}
}

//
// writers
//

func TestWriters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := fixtureReport()

	mdPath := filepath.Join(dir, "r.md")
	htmlPath := filepath.Join(dir, "r.html")
	jsonPath := filepath.Join(dir, "r.json")

	if err := r.WriteMarkdown(mdPath); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if err := r.WriteHTML(htmlPath); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if err := r.WriteJSON(jsonPath); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	j, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	for _, want := range []string{`"run_id": "leads_20240301_120000"`, `"rule_id": "L001_email_format"`, `"failed_rules": 2`} {
		if !strings.Contains(string(j), want) {
			t.Errorf("json missing %s", want)
		}
	}
}
