// Package pipeline sequences the full run: normalize identifiers, resolve
// them against the store, collect and bucket funding, and merge summaries
// back onto the caller's rows. Rows are processed independently; one row's
// failure never aborts the run.
package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fundquery/internal/funding"
	"fundquery/internal/metrics"
	"fundquery/internal/normalize"
	"fundquery/internal/quarter"
	"fundquery/internal/resolver"
	"fundquery/internal/rows"
	"fundquery/internal/store"
)

// State tracks an identifier through the run.
type State int

const (
	Pending State = iota
	Normalized
	Resolved
	NotFound
	Aggregated
	Merged
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Normalized:
		return "normalized"
	case Resolved:
		return "resolved"
	case NotFound:
		return "not_found"
	case Aggregated:
		return "aggregated"
	case Merged:
		return "merged"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-row record of what happened. Err is set only in the
// Failed state.
type Outcome struct {
	RowIndex int
	Raw      string
	Key      string
	State    State
	Err      error
	Summary  *rows.Summary
}

// Options tune a run.
type Options struct {
	// Job names the run in logs and metrics. Defaults to "fundquery".
	Job string
	// MinYear, when positive, drops quarter columns before that year.
	MinYear int
	// Workers caps concurrent store lookups in pass 1. Defaults to 4.
	Workers int
}

// Result is a completed bulk run: every input row merged, plus the per-row
// outcomes and the global quarter span.
type Result struct {
	Header   []string
	Rows     []rows.Row
	Outcomes []Outcome
	Quarters []quarter.Quarter
}

// Driver runs identifiers through the resolve/aggregate/merge sequence.
type Driver struct {
	st    store.Store
	res   *resolver.Resolver
	opts  Options
	runID string
}

func New(st store.Store, opts Options) *Driver {
	if opts.Job == "" {
		opts.Job = "fundquery"
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Driver{
		st:    st,
		res:   resolver.New(st),
		opts:  opts,
		runID: uuid.NewString(),
	}
}

// Run processes a bulk table in two passes. Pass 1 resolves and aggregates
// every row and records the union of observed quarters; pass 2 merges each
// row against that now-final column set so all output rows share one shape.
// The returned error is reserved for setup problems (no identifier column);
// per-row failures land in Outcomes.
func (d *Driver) Run(ctx context.Context, header []string, in []rows.Row) (*Result, error) {
	start := time.Now()
	log.Printf("[%s] run %s: %s rows", d.opts.Job, d.runID, humanize.Comma(int64(len(in))))

	outcomes := make([]Outcome, len(in))

	col, err := rows.IdentifierColumn(header, in)
	if err != nil {
		// Still emit one output row per input row, all empty-appended.
		log.Printf("[%s] run %s: %v", d.opts.Job, d.runID, err)
		for i := range in {
			outcomes[i] = Outcome{RowIndex: i, State: Failed, Err: err}
		}
		return d.merge(header, in, outcomes, start), nil
	}
	log.Printf("[%s] run %s: identifier column %q (index %d)", d.opts.Job, d.runID, header[col], col)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i := range in {
		i := i
		raw := ""
		if col < len(in[i].Values) {
			raw = in[i].Values[col]
		}
		g.Go(func() error {
			outcomes[i] = d.processOne(gctx, i, raw)
			return nil
		})
	}
	g.Wait()

	return d.merge(header, in, outcomes, start), nil
}

// processOne walks a single identifier through the state machine. Every
// exit path is a terminal state; errors are recorded, not returned.
func (d *Driver) processOne(ctx context.Context, idx int, raw string) Outcome {
	o := Outcome{RowIndex: idx, Raw: raw, State: Pending}

	stepStart := time.Now()
	key, err := normalize.Key(raw)
	metrics.RecordStep(d.opts.Job, "normalize", err, time.Since(stepStart))
	if err != nil {
		metrics.RecordRow(d.opts.Job, "invalid_identifier", 1)
		o.State, o.Err = Failed, err
		return o
	}
	o.Key, o.State = key, Normalized

	stepStart = time.Now()
	org, err := d.res.Resolve(ctx, key)
	metrics.RecordStep(d.opts.Job, "resolve", err, time.Since(stepStart))
	if err != nil {
		metrics.RecordRow(d.opts.Job, "failed", 1)
		o.State, o.Err = Failed, err
		return o
	}
	if org == nil {
		metrics.RecordRow(d.opts.Job, "not_found", 1)
		o.State = NotFound
		o.Summary = &rows.Summary{}
		return o
	}
	o.State = Resolved
	metrics.RecordRow(d.opts.Job, "resolved", 1)

	stepStart = time.Now()
	rds, totals, err := funding.Collect(ctx, d.st, org.UUID)
	metrics.RecordStep(d.opts.Job, "collect", err, time.Since(stepStart))
	if err != nil {
		metrics.RecordRow(d.opts.Job, "failed", 1)
		o.State, o.Err = Failed, err
		return o
	}

	stepStart = time.Now()
	frs := make([]store.FundingRound, len(rds))
	for i, r := range rds {
		frs[i] = r.FundingRound
	}
	buckets := quarter.Aggregate(frs, d.opts.MinYear)
	metrics.RecordStep(d.opts.Job, "aggregate", nil, time.Since(stepStart))

	o.State = Aggregated
	o.Summary = &rows.Summary{
		Found:         true,
		CompanyName:   org.Name,
		CompanyInfo:   funding.CompanyInfo(org),
		FundingInfo:   funding.FundingInfo(rds),
		TotalRaised:   totals.TotalRaised,
		RoundCount:    totals.RoundCount,
		InvestorCount: totals.InvestorCount,
		Buckets:       buckets,
	}
	return o
}

// merge is pass 2: build the union quarter span, append summaries, and log
// the run totals.
func (d *Driver) merge(header []string, in []rows.Row, outcomes []Outcome, start time.Time) *Result {
	span := unionQuarters(outcomes)
	m := rows.Merger{Quarters: span}

	out := make([]rows.Row, len(in))
	var resolved, notFound, failed int
	for i := range in {
		stepStart := time.Now()
		out[i] = m.Merge(in[i], outcomes[i].Summary)
		metrics.RecordStep(d.opts.Job, "merge", nil, time.Since(stepStart))
		switch outcomes[i].State {
		case Aggregated:
			outcomes[i].State = Merged
			resolved++
		case NotFound:
			outcomes[i].State = Merged
			notFound++
		case Failed:
			failed++
		}
	}
	metrics.RecordRow(d.opts.Job, "processed", int64(len(in)))

	extHeader := append(append([]string(nil), header...), m.Columns()...)

	stats := d.res.Stats()
	metrics.RecordRow(d.opts.Job, "cache_hit", stats.Hits)
	log.Printf("[%s] run %s: done in %s: %s rows, %d resolved, %d not found, %d failed, %d quarter columns, cache %d/%d hits",
		d.opts.Job, d.runID, time.Since(start).Round(time.Millisecond),
		humanize.Comma(int64(len(in))), resolved, notFound, failed,
		len(span), stats.Hits, stats.Hits+stats.Misses)

	return &Result{
		Header:   extHeader,
		Rows:     out,
		Outcomes: outcomes,
		Quarters: span,
	}
}

// unionQuarters builds the global ascending quarter span across all rows.
// The span is dense from the earliest to the latest quarter any company
// touched, so the output header reads chronologically with no gaps.
func unionQuarters(outcomes []Outcome) []quarter.Quarter {
	var lo, hi quarter.Quarter
	seen := false
	for _, o := range outcomes {
		if o.Summary == nil {
			continue
		}
		for _, b := range o.Summary.Buckets {
			if !seen {
				lo, hi, seen = b.Quarter, b.Quarter, true
				continue
			}
			if b.Quarter.Before(lo) {
				lo = b.Quarter
			}
			if hi.Before(b.Quarter) {
				hi = b.Quarter
			}
		}
	}
	if !seen {
		return nil
	}
	var span []quarter.Quarter
	for q := lo; !hi.Before(q); q = q.Next() {
		span = append(span, q)
	}
	return span
}

// SingleResult is the outcome of a one-identifier lookup, with enough
// detail for a terminal report.
type SingleResult struct {
	Key     string
	Org     *store.Organization
	Rounds  []funding.RoundWithInvestors
	Totals  funding.Totals
	Buckets []quarter.Bucket
}

// RunOne resolves a single raw identifier. A nil Org on a nil error means
// the company was not found.
func (d *Driver) RunOne(ctx context.Context, raw string) (*SingleResult, error) {
	key, err := normalize.Key(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}

	org, err := d.res.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return &SingleResult{Key: key}, nil
	}

	rds, totals, err := funding.Collect(ctx, d.st, org.UUID)
	if err != nil {
		return nil, err
	}
	frs := make([]store.FundingRound, len(rds))
	for i, r := range rds {
		frs[i] = r.FundingRound
	}

	return &SingleResult{
		Key:     key,
		Org:     org,
		Rounds:  rds,
		Totals:  totals,
		Buckets: quarter.Aggregate(frs, d.opts.MinYear),
	}, nil
}
