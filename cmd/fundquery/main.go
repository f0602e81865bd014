package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fundquery/internal/config"
	"fundquery/internal/metrics"
	"fundquery/internal/metrics/datadog"
	"fundquery/internal/metrics/prompush"
	"fundquery/internal/pipeline"
	"fundquery/internal/rows"
	"fundquery/internal/store"

	// register all store backends with the factory.
	// config selects which one to use at runtime.
	_ "fundquery/internal/store/all"
)

// main loads the run config, optionally initializes a metrics backend, opens
// the store, and runs either a single lookup or a bulk CSV merge.
func main() {
	var (
		cfgPath           string
		urlFlg            string
		inputFlg          string
		outputFlg         string
		minYearFlg        int
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/run.json", "run config JSON path")
	flag.StringVar(&urlFlg, "url", "", "look up a single company URL (overrides config source)")
	flag.StringVar(&inputFlg, "input", "", "input CSV path (overrides config source)")
	flag.StringVar(&outputFlg, "output", "", "output CSV path (default: derived from input name)")
	flag.IntVar(&minYearFlg, "min-year", 0, "hide quarter columns before this year (overrides config)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (prompush, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	run, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	// Flags override the config so one run file can serve many inputs.
	if urlFlg != "" {
		run.Source.Kind = "identifier"
		run.Source.Identifier = urlFlg
	}
	if inputFlg != "" {
		run.Source.Kind = "file"
		run.Source.File.Path = inputFlg
	}
	if outputFlg != "" {
		run.Output.Path = outputFlg
	}
	if minYearFlg > 0 {
		run.MinYear = minYearFlg
	}
	if metricsBackendFlg != "" {
		run.Metrics.Backend = metricsBackendFlg
	}
	if pushGatewayURLFlg != "" {
		run.Metrics.PushgatewayURL = pushGatewayURLFlg
	}

	issues := config.Validate(run)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	initMetrics(run, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	st, err := store.New(ctx, store.Config{Kind: run.Store.Kind, DSN: run.Store.DSN})
	if err != nil {
		fatalf("open store: %v", err)
	}
	defer st.Close()

	driver := pipeline.New(st, pipeline.Options{
		Job:     run.Job,
		MinYear: run.MinYear,
		Workers: run.Runtime.Workers,
	})

	switch run.Source.Kind {
	case "identifier":
		if err := runSingle(ctx, driver, run.Source.Identifier); err != nil {
			fatalf("%v", err)
		}
	case "file":
		if err := runBulk(ctx, driver, run); err != nil {
			fatalf("%v", err)
		}
	default:
		fatalf("unknown source kind %q", run.Source.Kind)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// initMetrics installs the configured metrics backend: config/flag first,
// then the METRICS_BACKEND environment variable.
func initMetrics(run config.Run, verbose bool) {
	backendName := run.Metrics.Backend
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "prompush", "pushgateway":
		gwURL := run.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		jobName := run.Job
		if jobName == "" {
			jobName = "fundquery"
		}
		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
		metrics.SetBackend(b)

	case "datadog":
		addr := run.Metrics.DatadogAddr
		if addr == "" {
			addr = os.Getenv("DD_DOGSTATSD_ADDR")
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "fundquery.",
			GlobalTags: []string{"job:" + run.Job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: addr=%v, backend=datadog", addr)
		metrics.SetBackend(b)

	case "", "none", "nop":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// runBulk reads the input CSV, runs the two-pass merge, and writes the
// output CSV.
func runBulk(ctx context.Context, driver *pipeline.Driver, run config.Run) error {
	in, err := os.Open(run.Source.File.Path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	header, rs, err := rows.ReadAll(in, run.Source.File.NoHeader)
	in.Close()
	if err != nil {
		return err
	}
	log.Printf("found %d rows in %s", len(rs), run.Source.File.Path)

	res, err := driver.Run(ctx, header, rs)
	if err != nil {
		return err
	}

	outPath := run.Output.Path
	if outPath == "" {
		outPath = deriveOutputPath(run.Source.File.Path, time.Now())
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	if err := rows.WriteAll(out, res.Header, res.Rows); err != nil {
		return err
	}
	log.Printf("output written to %s", outPath)
	return nil
}

// runSingle resolves one identifier and prints a terminal report. A company
// with no match exits nonzero so shell callers can branch on it.
func runSingle(ctx context.Context, driver *pipeline.Driver, raw string) error {
	res, err := driver.RunOne(ctx, raw)
	if err != nil {
		return err
	}
	printReport(os.Stdout, res)
	if res.Org == nil {
		os.Exit(1)
	}
	return nil
}

// deriveOutputPath builds "<input base>_funding_rounds_to_date_<date>.csv"
// in the current directory.
func deriveOutputPath(inputPath string, now time.Time) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_funding_rounds_to_date_%s.csv", base, now.Format("2006-01-02"))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
