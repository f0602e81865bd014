package rows

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"fundquery/internal/quarter"
)

func q(year, n int) quarter.Quarter { return quarter.Quarter{Year: year, Q: n} }

func bucket(year, n int, total int64) quarter.Bucket {
	return quarter.Bucket{Quarter: q(year, n), Total: decimal.NewFromInt(total)}
}

func TestMergerColumns(t *testing.T) {
	t.Parallel()

	m := Merger{Quarters: []quarter.Quarter{q(2021, 4), q(2022, 1)}}
	want := []string{
		"company_name", "company_info", "funding_info",
		"total_funding_usd", "num_funding_rounds", "num_investors",
		"2021-Q4", "2022-Q1",
	}
	if got := m.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns = %v, want %v", got, want)
	}
}

func TestMergeFound(t *testing.T) {
	t.Parallel()

	m := Merger{Quarters: []quarter.Quarter{q(2021, 3), q(2021, 4), q(2022, 1), q(2022, 2)}}
	in := Row{Columns: []string{"url"}, Values: []string{"tesla.com"}}
	s := &Summary{
		Found:         true,
		CompanyName:   "Tesla",
		CompanyInfo:   "Name: Tesla",
		FundingInfo:   "[Series A]",
		TotalRaised:   decimal.NewFromInt(3_000_000),
		RoundCount:    2,
		InvestorCount: 5,
		// Company span is 2021-Q4 through 2022-Q1; the run's union is wider.
		Buckets: []quarter.Bucket{bucket(2021, 4, 3_000_000), bucket(2022, 1, 0)},
	}

	out := m.Merge(in, s)
	want := []string{
		"tesla.com",
		"Tesla", "Name: Tesla", "[Series A]", "3000000", "2", "5",
		"",        // 2021-Q3: outside the company's span
		"3000000", // 2021-Q4
		"0",       // 2022-Q1: in span, nothing raised
		"",        // 2022-Q2: outside
	}
	if !reflect.DeepEqual(out.Values, want) {
		t.Errorf("Merge values = %v\nwant %v", out.Values, want)
	}
	if len(out.Columns) != len(out.Values) {
		t.Errorf("columns/values width mismatch: %d vs %d", len(out.Columns), len(out.Values))
	}
}

func TestMergeNotFoundAndNil(t *testing.T) {
	t.Parallel()

	m := Merger{Quarters: []quarter.Quarter{q(2021, 1)}}
	in := Row{Columns: []string{"url"}, Values: []string{"nosuch.example"}}

	for _, s := range []*Summary{nil, {}} {
		out := m.Merge(in, s)
		want := []string{"nosuch.example", "", "", "", "", "", "", ""}
		if !reflect.DeepEqual(out.Values, want) {
			t.Errorf("Merge(%v) values = %v, want %v", s, out.Values, want)
		}
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	m := Merger{Quarters: nil}
	in := Row{Columns: []string{"url"}, Values: []string{"tesla.com"}}
	_ = m.Merge(in, nil)

	if len(in.Values) != 1 || len(in.Columns) != 1 {
		t.Errorf("input row mutated: %+v", in)
	}
}
