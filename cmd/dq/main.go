// Command dq runs the data cleaning & validation pipeline over one raw CSV.
//
// It reads the input, cleans and deduplicates it per the dataset kind, runs
// the dataset's validation rules, and writes run-id-scoped artifacts:
//
//	outputs/clean/{dataset}_clean_{run}.csv
//	outputs/reports/{dataset}_dq_report_{run}.{md,html,json}
//	outputs/logs/run_{run}.log
//
// Fatal errors (missing input, missing required column, unknown dataset)
// terminate with a non-zero exit status; data-quality findings never do.
//
// Optional integrations:
//   - -store/-dsn loads the cleaned table into postgres, sqlite, or mssql.
//     The DSN resolves flag → DSN env var.
//   - -metrics-backend datadog submits run counters/durations; extra tags via
//     METRICS_TAGS (comma-separated "k:v").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dq/internal/metrics"
	"dq/internal/metrics/datadog"
	"dq/internal/pipeline"
	"dq/internal/runlog"
	"dq/internal/storage"

	// register all storage backends with the factory.
	_ "dq/internal/storage/all"
)

func main() {
	var (
		inputPath         string
		dataset           string
		outDir            string
		storeKind         string
		dsnFlg            string
		metricsBackendFlg string
	)

	flag.StringVar(&inputPath, "input", "", "path to raw CSV (required)")
	flag.StringVar(&dataset, "dataset", "", "dataset kind: sales or leads (required)")
	flag.StringVar(&outDir, "outdir", "outputs", "base outputs folder")
	flag.StringVar(&storeKind, "store", "", "optional storage backend for the cleaned table (postgres, sqlite, mssql)")
	flag.StringVar(&dsnFlg, "dsn", "", "storage DSN (overrides env DSN)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (datadog, none)")
	flag.Parse()

	if inputPath == "" || dataset == "" {
		fatalf("usage: dq -input <raw.csv> -dataset <sales|leads> [-outdir outputs]")
	}

	runID := pipeline.BuildRunID(dataset, time.Now())

	cleanDir := filepath.Join(outDir, "clean")
	reportsDir := filepath.Join(outDir, "reports")
	logsDir := filepath.Join(outDir, "logs")
	for _, d := range []string{cleanDir, reportsDir, logsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("create output dir %s: %v", d, err)
		}
	}

	logPath := filepath.Join(logsDir, fmt.Sprintf("run_%s.log", runID))
	log, err := runlog.Open(logPath, os.Stdout)
	if err != nil {
		fatalf("%v", err)
	}
	defer log.Close()
	log.Infof("Starting run_id=%s input=%s dataset=%s", runID, inputPath, dataset)

	switch metricsBackendFlg {
	case "datadog":
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "dq_" + dataset,
			Tags:    datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
		})
		if err != nil {
			log.Warnf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Close(); err != nil {
					log.Warnf("metrics: flush error: %v", err)
				}
			}()
		}
	case "", "none":
		// nop backend
	default:
		fatalf("unknown metrics backend %q", metricsBackendFlg)
	}

	// DSN precedence: flag, then env.
	dsn := dsnFlg
	if dsn == "" {
		dsn = os.Getenv("DSN")
	}

	res, err := pipeline.Run(context.Background(), pipeline.Options{
		InputPath:  inputPath,
		Dataset:    dataset,
		RunID:      runID,
		CleanDir:   cleanDir,
		ReportsDir: reportsDir,
		LogPath:    logPath,
		Store:      storage.Config{Kind: storeKind, DSN: dsn},
	}, log)
	if err != nil {
		log.Errorf("run failed: %v", err)
		fatalf("run %s failed: %v", runID, err)
	}

	log.Infof("Outputs: clean=%s report_md=%s report_html=%s log=%s",
		res.CleanPath, res.ReportMDPath, res.ReportHTMLPath, logPath)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
