// Package metrics is a small backend-agnostic layer for recording pipeline
// counters and timings. The global backend defaults to a no-op so callers
// can instrument unconditionally; a real backend (see the prompush
// subpackage) is installed at startup when configured. It mirrors the
// pluggable pattern of the store package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal surface a metrics system must provide.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics for backends that need it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures one pipeline stage execution: a count partitioned by
// outcome plus its duration. Typical steps are "normalize", "resolve",
// "collect", "aggregate" and "merge".
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}
	backend.IncCounter("fundquery_step_total", 1, lbls)
	backend.ObserveHistogram("fundquery_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRow increments the row-level counter for the given job and kind.
//
// Kinds mirror the run summary: "processed", "resolved", "not_found",
// "invalid_identifier", "failed", "cache_hit".
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("fundquery_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}
