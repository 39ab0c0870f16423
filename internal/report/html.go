package report

import (
	"fmt"
	"html/template"
	"os"
	"strings"

	"dq/internal/table"
)

// htmlTmpl is the styled hypertext rendering. It is fully self-contained (no
// external assets) so reports can be mailed around or opened from a share.
// Content must stay equivalent to the Markdown rendering; only formatting may
// differ.
var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"cell":    func(m map[string]any, c string) string { return table.Render(m[c]) },
	"rate":    func(f float64) string { return fmt.Sprintf("%.4f", f) },
	"samples": func(s []string) string { return strings.Join(s, ", ") },
	"badge": func(status string) string {
		if status == "PASS" {
			return "badge-pass"
		}
		return "badge-fail"
	},
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Data Quality Report — {{.Meta.Dataset}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; margin: 24px; line-height: 1.45; }
h1,h2,h3,h4 { margin-top: 1.2em; }
code, pre { background: #f6f8fa; padding: 2px 4px; border-radius: 4px; }
table { border-collapse: collapse; width: 100%; margin: 12px 0; }
th, td { border: 1px solid #e5e7eb; padding: 8px; font-size: 13px; vertical-align: top; }
th { background: #f3f4f6; text-align: left; }
.badge-pass { color: #065f46; font-weight: 600; }
.badge-fail { color: #991b1b; font-weight: 600; }
.small { color: #6b7280; font-size: 12px; }
</style>
</head>
<body>
<h1>Data Quality Report — {{.Meta.Dataset}}</h1>
<p class="small">Run ID: <code>{{.Meta.RunID}}</code> • Generated: {{.Meta.GeneratedAt}}</p>

<h2>Run metadata</h2>
<ul>
<li><b>dataset</b>: {{.Meta.Dataset}}</li>
<li><b>run_id</b>: {{.Meta.RunID}}</li>
<li><b>generated_at</b>: {{.Meta.GeneratedAt}}</li>
<li><b>raw_rows</b>: {{.Meta.RawRows}}</li>
<li><b>clean_rows</b>: {{.Meta.CleanRows}}</li>
<li><b>raw_cols</b>: {{.Meta.RawCols}}</li>
<li><b>clean_cols</b>: {{.Meta.CleanCols}}</li>
<li><b>failed_rules</b>: {{.Meta.FailedRules}}</li>
<li><b>total_rules</b>: {{.Meta.TotalRules}}</li>
</ul>

<h2>Validation results</h2>
<table id="results">
<thead><tr><th>Rule</th><th>Severity</th><th>Status</th><th>Failed</th><th>Description</th></tr></thead>
<tbody>
{{range .Results}}<tr><td><code>{{.RuleID}}</code></td><td>{{.Severity}}</td><td class="{{badge .Status}}">{{.Status}}</td><td>{{.FailedCount}}</td><td>{{.Description}}</td></tr>
{{end}}</tbody>
</table>

<h3>Failed samples (up to 5 rows per rule)</h3>
{{$cols := .Columns}}
{{range .Failed}}<h4><code>{{.RuleID}}</code> — {{.Description}} ({{.Severity}})</h4>
{{if .FailedSample}}<table class="failed-sample">
<thead><tr>{{range $cols}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{$sample := .FailedSample}}{{range $sample}}<tr>{{$row := .}}{{range $cols}}<td>{{cell $row .}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{else}}<p><i>No sample available.</i></p>
{{end}}{{end}}

<h2>Column profile (raw)</h2>
<table id="profile-raw">
<thead><tr><th>column</th><th>dtype</th><th>null_rate</th><th>distinct</th><th>sample_values</th></tr></thead>
<tbody>
{{range .RawProfile}}<tr><td>{{.Column}}</td><td>{{.DType}}</td><td>{{rate .NullRate}}</td><td>{{.Distinct}}</td><td>{{samples .Samples}}</td></tr>
{{end}}</tbody>
</table>

<h2>Column profile (clean)</h2>
<table id="profile-clean">
<thead><tr><th>column</th><th>dtype</th><th>null_rate</th><th>distinct</th><th>sample_values</th></tr></thead>
<tbody>
{{range .CleanProfile}}<tr><td>{{.Column}}</td><td>{{.DType}}</td><td>{{rate .NullRate}}</td><td>{{.Distinct}}</td><td>{{samples .Samples}}</td></tr>
{{end}}</tbody>
</table>

<h2>Artifacts</h2>
<ul>
<li>Raw input: <code>{{.Artifacts.InputPath}}</code></li>
<li>Clean output: <code>{{.Artifacts.CleanPath}}</code></li>
<li>Log: <code>{{.Artifacts.LogPath}}</code></li>
</ul>
</body>
</html>
`))

// HTML renders the hypertext form of the report.
func (r *Report) HTML() (string, error) {
	var b strings.Builder
	if err := htmlTmpl.Execute(&b, r); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return b.String(), nil
}

// WriteHTML writes the HTML artifact.
func (r *Report) WriteHTML(path string) error {
	s, err := r.HTML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}
