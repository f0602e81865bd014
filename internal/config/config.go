// Package config defines the JSON-serializable configuration model for a
// run. It is intentionally small and dependency-free so run files can be
// loaded from disk and passed through the program without glue code.
//
// Example:
//
//	{
//	  "job":    "portfolio-refresh",
//	  "source": { "kind": "file", "file": { "path": "companies.csv" } },
//	  "store":  { "kind": "sqlite", "dsn": "funding.db" },
//	  "output": { "path": "" },
//	  "min_year": 2015,
//	  "runtime": { "workers": 8 }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Run is the top-level object decoded from a run file.
type Run struct {
	// Job names the run for logs and metric labels.
	Job string `json:"job"`

	// Source says where identifiers come from: a CSV file or a single
	// identifier given inline.
	Source Source `json:"source"`

	// Store selects the funding database backend and its DSN.
	Store Store `json:"store"`

	// Output controls where the merged CSV is written. An empty path
	// derives a name from the input file.
	Output Output `json:"output"`

	// MinYear, when positive, hides quarter columns before that year.
	// Lifetime totals are unaffected.
	MinYear int `json:"min_year"`

	Runtime Runtime `json:"runtime"`
	Metrics Metrics `json:"metrics"`
}

// Source identifies where company identifiers come from.
type Source struct {
	// Kind is "file" for bulk CSV input or "identifier" for a single lookup.
	Kind string `json:"kind"`

	File SourceFile `json:"file"`

	// Identifier is the raw company URL for the "identifier" kind.
	Identifier string `json:"identifier"`
}

// SourceFile holds options for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`

	// NoHeader marks inputs whose first record is data; column names are
	// synthesized and the identifier column is detected by value sampling.
	NoHeader bool `json:"no_header"`
}

// Store selects the database backend.
type Store struct {
	// Kind is a registered backend name: sqlite, postgres, mysql, mssql.
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
}

// Output controls the merged CSV destination.
type Output struct {
	Path string `json:"path"`
}

// Runtime controls concurrency.
type Runtime struct {
	// Workers caps concurrent store lookups. Zero means the default.
	Workers int `json:"workers"`
}

// Metrics selects an optional metrics backend.
type Metrics struct {
	// Backend is "" or "nop" for none, "prompush" for a Prometheus
	// Pushgateway, or "datadog" for a DogStatsD agent.
	Backend string `json:"backend"`

	// PushgatewayURL is required for the "prompush" backend.
	PushgatewayURL string `json:"pushgateway_url"`

	// DatadogAddr is required for the "datadog" backend,
	// e.g. "127.0.0.1:8125".
	DatadogAddr string `json:"datadog_addr"`
}

// Load reads and decodes a run file. Runtime knobs left unset fall back to
// environment variables so deployments can tune them without editing the
// file.
func Load(path string) (Run, error) {
	var r Run
	b, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("load config: %w", err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("load config %s: %w", path, err)
	}
	if r.Runtime.Workers == 0 {
		r.Runtime.Workers = getenvInt("FUNDQUERY_WORKERS", 0)
	}
	return r, nil
}

// getenvInt reads an integer from the environment, returning def when the
// variable is unset or malformed.
func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
