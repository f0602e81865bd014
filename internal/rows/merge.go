package rows

import (
	"strconv"

	"github.com/shopspring/decimal"

	"fundquery/internal/quarter"
)

// Summary is everything a resolved company contributes to its output row.
type Summary struct {
	Found         bool
	CompanyName   string
	CompanyInfo   string
	FundingInfo   string
	TotalRaised   decimal.Decimal
	RoundCount    int
	InvestorCount int
	Buckets       []quarter.Bucket
}

// summaryColumns are the fixed columns appended ahead of the quarter labels.
var summaryColumns = []string{
	"company_name",
	"company_info",
	"funding_info",
	"total_funding_usd",
	"num_funding_rounds",
	"num_investors",
}

// Merger appends funding summaries onto caller rows. Quarters is the union
// of every company's quarter span across the run, ascending, so all output
// rows share one column set.
type Merger struct {
	Quarters []quarter.Quarter
}

// Columns returns the full appended header: the fixed summary columns
// followed by one label per quarter.
func (m Merger) Columns() []string {
	cols := make([]string, 0, len(summaryColumns)+len(m.Quarters))
	cols = append(cols, summaryColumns...)
	for _, q := range m.Quarters {
		cols = append(cols, q.Label())
	}
	return cols
}

// Merge returns a copy of r with the summary appended. A nil or not-found
// summary appends empty cells so every output row stays rectangular.
// Quarters inside the company's own span render their total ("0" when
// nothing was raised); quarters outside it stay blank.
func (m Merger) Merge(r Row, s *Summary) Row {
	out := r.Clone()
	vals := make([]string, 0, len(summaryColumns)+len(m.Quarters))

	if s == nil || !s.Found {
		for range summaryColumns {
			vals = append(vals, "")
		}
		for range m.Quarters {
			vals = append(vals, "")
		}
		out.Append(m.Columns(), vals)
		return out
	}

	vals = append(vals,
		s.CompanyName,
		s.CompanyInfo,
		s.FundingInfo,
		s.TotalRaised.String(),
		strconv.Itoa(s.RoundCount),
		strconv.Itoa(s.InvestorCount),
	)

	totals := make(map[quarter.Quarter]decimal.Decimal, len(s.Buckets))
	var lo, hi quarter.Quarter
	for i, b := range s.Buckets {
		totals[b.Quarter] = b.Total
		if i == 0 {
			lo, hi = b.Quarter, b.Quarter
			continue
		}
		if b.Quarter.Before(lo) {
			lo = b.Quarter
		}
		if hi.Before(b.Quarter) {
			hi = b.Quarter
		}
	}
	for _, q := range m.Quarters {
		if len(s.Buckets) == 0 || q.Before(lo) || hi.Before(q) {
			vals = append(vals, "")
			continue
		}
		vals = append(vals, totals[q].String())
	}

	out.Append(m.Columns(), vals)
	return out
}
