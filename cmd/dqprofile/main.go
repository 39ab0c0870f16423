// Command dqprofile prints a column-quality profile for any CSV file.
//
// It is a standalone inspection tool: the same per-column summary the quality
// report embeds (dtype, null rate, distinct count, sample values), printed to
// stdout as a Markdown table. Useful for eyeballing a raw export before
// wiring it into the pipeline.
package main

import (
	"flag"
	"fmt"
	"os"

	csvp "dq/internal/parser/csv"
	"dq/internal/report"
)

func main() {
	var inputPath string
	flag.StringVar(&inputPath, "input", "", "path to CSV (required)")
	flag.Parse()

	// Also accept a bare positional path: dqprofile data.csv
	if inputPath == "" && flag.NArg() == 1 {
		inputPath = flag.Arg(0)
	}
	if inputPath == "" {
		fatalf("usage: dqprofile -input <file.csv>")
	}

	t, err := csvp.ReadFile(inputPath)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("%s: %d rows, %d columns\n\n", inputPath, t.Len(), len(t.Columns))
	fmt.Print(report.ProfileTable(report.Summarize(t)))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
