package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"dq/internal/table"
)

// mdTable renders a Markdown pipe table with display-width-aware padding so
// tables stay readable in a terminal even when cells carry non-ASCII sample
// values.
func mdTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-runewidth.StringWidth(s))
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, c := range cells {
			b.WriteString(" ")
			b.WriteString(pad(c, widths[i]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func profileRows(ps []Profile) [][]string {
	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []string{
			p.Column,
			p.DType,
			fmt.Sprintf("%.4f", p.NullRate),
			fmt.Sprintf("%d", p.Distinct),
			strings.Join(p.Samples, ", "),
		})
	}
	return rows
}

func sampleRows(columns []string, sample []map[string]any) [][]string {
	rows := make([][]string, 0, len(sample))
	for _, m := range sample {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = table.Render(m[c])
		}
		rows = append(rows, row)
	}
	return rows
}

// ProfileTable renders a profile slice as a standalone Markdown table
// (used by the dqprofile command and the report body).
func ProfileTable(ps []Profile) string {
	return mdTable([]string{"column", "dtype", "null_rate", "distinct", "sample_values"}, profileRows(ps))
}

// Markdown renders the structured-text form of the report.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Quality Report — %s\n\n", r.Meta.Dataset)

	b.WriteString("## Run metadata\n\n")
	fmt.Fprintf(&b, "- **dataset**: %s\n", r.Meta.Dataset)
	fmt.Fprintf(&b, "- **run_id**: %s\n", r.Meta.RunID)
	fmt.Fprintf(&b, "- **generated_at**: %s\n", r.Meta.GeneratedAt)
	fmt.Fprintf(&b, "- **raw_rows**: %d\n", r.Meta.RawRows)
	fmt.Fprintf(&b, "- **clean_rows**: %d\n", r.Meta.CleanRows)
	fmt.Fprintf(&b, "- **raw_cols**: %d\n", r.Meta.RawCols)
	fmt.Fprintf(&b, "- **clean_cols**: %d\n", r.Meta.CleanCols)
	fmt.Fprintf(&b, "- **failed_rules**: %d\n", r.Meta.FailedRules)
	fmt.Fprintf(&b, "- **total_rules**: %d\n", r.Meta.TotalRules)
	b.WriteString("\n")

	b.WriteString("## Validation results\n\n")
	resRows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		resRows = append(resRows, []string{
			res.RuleID,
			string(res.Severity),
			res.Status,
			fmt.Sprintf("%d", res.FailedCount),
			res.Description,
		})
	}
	b.WriteString(mdTable([]string{"Rule", "Severity", "Status", "Failed", "Description"}, resRows))
	b.WriteString("\n")

	b.WriteString("### Failed samples (up to 5 rows per rule)\n\n")
	for _, res := range r.Failed() {
		fmt.Fprintf(&b, "#### %s — %s (%s)\n\n", res.RuleID, res.Description, res.Severity)
		if len(res.FailedSample) == 0 {
			b.WriteString("_No sample available._\n\n")
			continue
		}
		b.WriteString(mdTable(r.Columns, sampleRows(r.Columns, res.FailedSample)))
		b.WriteString("\n")
	}

	b.WriteString("## Column profile (raw)\n\n")
	b.WriteString(ProfileTable(r.RawProfile))
	b.WriteString("\n## Column profile (clean)\n\n")
	b.WriteString(ProfileTable(r.CleanProfile))

	b.WriteString("\n## Artifacts\n\n")
	fmt.Fprintf(&b, "- Raw input: `%s`\n", r.Artifacts.InputPath)
	fmt.Fprintf(&b, "- Clean output: `%s`\n", r.Artifacts.CleanPath)
	fmt.Fprintf(&b, "- Log: `%s`\n", r.Artifacts.LogPath)

	return b.String()
}

// WriteMarkdown writes the Markdown artifact.
func (r *Report) WriteMarkdown(path string) error {
	return os.WriteFile(path, []byte(r.Markdown()), 0o644)
}
