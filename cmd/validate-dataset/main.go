// Command validate-dataset runs the cross-file consistency checks over a
// generated dataset and writes a markdown report. It exits non-zero when any
// check fails.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cost-to-serve/pkg/config"
	"cost-to-serve/pkg/validate"
)

var (
	configPath = flag.String("config", "", "Config file path (default: optional ./config.yml)")
	reportPath = flag.String("report", "", "Report output path (default <generated_dir>/validation_report.md)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	out := *reportPath
	if out == "" {
		out = filepath.Join(cfg.Data.GeneratedDir, "validation_report.md")
	}

	results := validate.RunAll(cfg)
	report := validate.Report(results)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fatalf("mkdir report dir: %v", err)
	}
	if err := os.WriteFile(out, []byte(report), 0o644); err != nil {
		fatalf("write report: %v", err)
	}

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Printf("%-40s %s\n", r.Name, status)
	}
	fmt.Printf("report written to %s\n", out)

	if !validate.AllPassed(results) {
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "validate-dataset: "+format+"\n", args...)
	os.Exit(1)
}
