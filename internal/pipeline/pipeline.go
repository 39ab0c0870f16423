// Package pipeline wires the run: load → clean → dedupe → validate → report.
//
// One Run is a single-threaded, synchronous batch over one input file. Fatal
// errors (missing input, missing required columns, unknown dataset kind)
// propagate to the caller; data-quality findings never do — they end up in
// the report and log only.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"dq/internal/metrics"
	"dq/internal/normalize"
	csvp "dq/internal/parser/csv"
	"dq/internal/report"
	"dq/internal/rules"
	"dq/internal/runlog"
	"dq/internal/storage"
	"dq/internal/table"
)

// Options configures one run.
type Options struct {
	InputPath string
	Dataset   string
	RunID     string

	CleanDir   string
	ReportsDir string
	LogPath    string // already-open run log location, embedded in the report

	// Store, when Kind is non-empty, additionally loads the cleaned table
	// into a relational backend.
	Store storage.Config
}

// Result points at everything a run produced.
type Result struct {
	RunID          string
	Report         *report.Report
	CleanPath      string
	ReportMDPath   string
	ReportHTMLPath string
	ReportJSONPath string
	Elapsed        time.Duration
}

// BuildRunID composes the artifact-scoping run identifier. Concurrent runs
// are isolated purely by this name.
func BuildRunID(dataset string, now time.Time) string {
	return fmt.Sprintf("%s_%s", dataset, now.Format("20060102_150405"))
}

// Run executes the pipeline end to end.
func Run(ctx context.Context, opts Options, log *runlog.Logger) (*Result, error) {
	start := time.Now()

	raw, err := csvp.ReadFile(opts.InputPath)
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d rows from %s", raw.Len(), opts.InputPath)

	clean := raw.Clone()
	if err := normalize.Clean(clean, opts.Dataset, log); err != nil {
		return nil, err
	}

	var dropped int
	if pk := normalize.PrimaryKey(opts.Dataset); pk != "" {
		dropped = normalize.Deduplicate(clean, pk, log)
	}

	ruleSet, err := rules.ForDataset(opts.Dataset)
	if err != nil {
		return nil, err
	}
	log.Infof("Running %d validation rules for dataset=%s", len(ruleSet), opts.Dataset)
	results, err := rules.RunAll(clean, ruleSet)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		log.Infof("Rule %s: status=%s, failed=%d", r.RuleID, r.Status, r.FailedCount)
		if r.FailedCount > 0 {
			metrics.IncCounter(metrics.MetricRuleFailuresTotal, float64(r.FailedCount), metrics.Labels{
				"rule":     r.RuleID,
				"severity": string(r.Severity),
			})
		}
	}

	res := &Result{RunID: opts.RunID}
	res.CleanPath = filepath.Join(opts.CleanDir, fmt.Sprintf("%s_clean_%s.csv", opts.Dataset, opts.RunID))
	if err := csvp.WriteFile(res.CleanPath, clean); err != nil {
		return nil, err
	}
	log.Infof("Wrote %d rows to %s", clean.Len(), res.CleanPath)

	rep := report.Build(opts.Dataset, opts.RunID, raw, clean, results, report.Artifacts{
		InputPath: opts.InputPath,
		CleanPath: res.CleanPath,
		LogPath:   opts.LogPath,
	}, time.Now())
	res.Report = rep

	res.ReportMDPath = filepath.Join(opts.ReportsDir, fmt.Sprintf("%s_dq_report_%s.md", opts.Dataset, opts.RunID))
	res.ReportHTMLPath = filepath.Join(opts.ReportsDir, fmt.Sprintf("%s_dq_report_%s.html", opts.Dataset, opts.RunID))
	res.ReportJSONPath = filepath.Join(opts.ReportsDir, fmt.Sprintf("%s_dq_report_%s.json", opts.Dataset, opts.RunID))
	if err := rep.WriteMarkdown(res.ReportMDPath); err != nil {
		return nil, err
	}
	if err := rep.WriteHTML(res.ReportHTMLPath); err != nil {
		return nil, err
	}
	if err := rep.WriteJSON(res.ReportJSONPath); err != nil {
		return nil, err
	}
	log.Infof("Wrote report: %s and %s", res.ReportMDPath, res.ReportHTMLPath)

	if opts.Store.Kind != "" {
		if err := persist(ctx, opts, clean, log); err != nil {
			return nil, err
		}
	}

	metrics.IncCounter(metrics.MetricRowsTotal, float64(raw.Len()), metrics.Labels{"kind": "raw"})
	metrics.IncCounter(metrics.MetricRowsTotal, float64(clean.Len()), metrics.Labels{"kind": "clean"})
	metrics.IncCounter(metrics.MetricRowsTotal, float64(dropped), metrics.Labels{"kind": "dropped"})
	metrics.IncCounter(metrics.MetricRulesFailedTotal, float64(rep.Meta.FailedRules), metrics.Labels{"dataset": opts.Dataset})

	res.Elapsed = time.Since(start)
	metrics.ObserveHistogram(metrics.MetricRunDurationSeconds, res.Elapsed.Seconds(), metrics.Labels{"dataset": opts.Dataset})
	log.Infof("Finished run_id=%s in %.2fs", opts.RunID, res.Elapsed.Seconds())
	return res, nil
}

// persist loads the cleaned table into the configured backend under a
// run-scoped table name.
func persist(ctx context.Context, opts Options, clean *table.Table, log *runlog.Logger) error {
	repo, err := storage.New(ctx, opts.Store)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	spec := storage.Spec{Name: storage.NormalizeName(opts.Dataset + "_clean_" + opts.RunID)}
	for i, c := range clean.Columns {
		spec.Columns = append(spec.Columns, storage.Column{Name: c, DType: clean.DType(i)})
	}
	if err := repo.EnsureTable(ctx, spec); err != nil {
		return err
	}
	n, err := repo.InsertRows(ctx, spec, clean.Rows)
	if err != nil {
		return err
	}
	log.Infof("Stored %d rows in %s table %s", n, opts.Store.Kind, spec.Name)
	return nil
}
