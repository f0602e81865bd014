package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fundquery/internal/rows"
	"fundquery/internal/store"
)

type fakeStore struct {
	orgs        map[string][]store.Organization
	rounds      map[string][]store.FundingRound
	investments map[string][]store.Investment
}

func (f *fakeStore) LookupOrganizationsByNormalizedURL(_ context.Context, key string) ([]store.Organization, error) {
	return f.orgs[key], nil
}

func (f *fakeStore) GetFundingRounds(_ context.Context, orgUUID string) ([]store.FundingRound, error) {
	return f.rounds[orgUUID], nil
}

func (f *fakeStore) GetInvestments(_ context.Context, roundUUID string) ([]store.Investment, error) {
	return f.investments[roundUUID], nil
}

func (f *fakeStore) Close() error { return nil }

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func usd(n int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(n), Valid: true}
}

func testStore() *fakeStore {
	return &fakeStore{
		orgs: map[string][]store.Organization{
			"tesla.com": {{UUID: "org1", Name: "Tesla", Website: "tesla.com"}},
		},
		rounds: map[string][]store.FundingRound{
			"org1": {
				{UUID: "r1", OrgUUID: "org1", AnnouncedOn: date("2021-02-01"), RaisedUSD: usd(1_000_000), Name: "Seed"},
				{UUID: "r2", OrgUUID: "org1", AnnouncedOn: date("2021-09-01"), RaisedUSD: usd(2_000_000), Name: "Series A"},
			},
		},
		investments: map[string][]store.Investment{
			"r1": {{UUID: "i1", RoundUUID: "r1", InvestorName: "Acme Ventures"}},
		},
	}
}

func testRows(header []string, vals ...[]string) []rows.Row {
	rs := make([]rows.Row, len(vals))
	for i, v := range vals {
		rs[i] = rows.Row{Columns: header, Values: v}
	}
	return rs
}

func TestRunBulk(t *testing.T) {
	t.Parallel()

	d := New(testStore(), Options{Job: "test"})
	header := []string{"name", "url"}
	in := testRows(header,
		[]string{"Tesla", "https://www.tesla.com/about"},
		[]string{"Bad", "not a url"},
		[]string{"Ghost", "nosuch.example"},
	)

	res, err := d.Run(context.Background(), header, in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Rows) != 3 {
		t.Fatalf("output rows = %d, want 3 (no row is ever dropped)", len(res.Rows))
	}

	// Quarter span is dense 2021-Q1..2021-Q3.
	labels := make([]string, len(res.Quarters))
	for i, q := range res.Quarters {
		labels[i] = q.Label()
	}
	if got, want := strings.Join(labels, ","), "2021-Q1,2021-Q2,2021-Q3"; got != want {
		t.Errorf("quarter span = %s, want %s", got, want)
	}

	// States.
	if res.Outcomes[0].State != Merged || res.Outcomes[0].Key != "tesla.com" {
		t.Errorf("outcome 0 = %+v, want merged tesla.com", res.Outcomes[0])
	}
	if res.Outcomes[1].State != Failed || res.Outcomes[1].Err == nil {
		t.Errorf("outcome 1 = %+v, want failed with error", res.Outcomes[1])
	}
	if res.Outcomes[2].State != Merged || res.Outcomes[2].Summary == nil || res.Outcomes[2].Summary.Found {
		t.Errorf("outcome 2 = %+v, want merged not-found", res.Outcomes[2])
	}

	// Header: original columns, then summary columns, then quarters.
	if res.Header[0] != "name" || res.Header[1] != "url" {
		t.Errorf("header start = %v", res.Header[:2])
	}
	if got := res.Header[len(res.Header)-1]; got != "2021-Q3" {
		t.Errorf("last header column = %q, want 2021-Q3", got)
	}

	// Resolved row carries its totals; failed rows stay empty but rectangular.
	tesla := res.Rows[0]
	if got := tesla.Get("total_funding_usd"); got != "3000000" {
		t.Errorf("total_funding_usd = %q, want 3000000", got)
	}
	if got := tesla.Get("2021-Q1"); got != "1000000" {
		t.Errorf("2021-Q1 = %q, want 1000000", got)
	}
	if got := tesla.Get("2021-Q2"); got != "0" {
		t.Errorf("2021-Q2 = %q, want 0", got)
	}
	for _, r := range res.Rows[1:] {
		if len(r.Values) != len(res.Header) {
			t.Errorf("row width = %d, want %d", len(r.Values), len(res.Header))
		}
		if got := r.Get("company_name"); got != "" {
			t.Errorf("unresolved row company_name = %q, want empty", got)
		}
	}
}

func TestRunNoIdentifierColumn(t *testing.T) {
	t.Parallel()

	d := New(testStore(), Options{Job: "test"})
	header := []string{"name", "city"}
	in := testRows(header, []string{"Tesla", "Austin"})

	res, err := d.Run(context.Background(), header, in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("output rows = %d, want 1", len(res.Rows))
	}
	if res.Outcomes[0].State != Failed || !strings.Contains(res.Outcomes[0].Err.Error(), "identifier") {
		t.Errorf("outcome = %+v, want failed with identifier error", res.Outcomes[0])
	}
	if len(res.Rows[0].Values) != len(res.Header) {
		t.Errorf("row width = %d, want %d", len(res.Rows[0].Values), len(res.Header))
	}
}

func TestRunMinYear(t *testing.T) {
	t.Parallel()

	fs := testStore()
	fs.rounds["org1"] = append(fs.rounds["org1"],
		store.FundingRound{UUID: "r0", OrgUUID: "org1", AnnouncedOn: date("2015-05-01"), RaisedUSD: usd(500_000)})

	d := New(fs, Options{Job: "test", MinYear: 2021})
	header := []string{"url"}
	res, err := d.Run(context.Background(), header, testRows(header, []string{"tesla.com"}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, q := range res.Quarters {
		if q.Year < 2021 {
			t.Errorf("quarter %s survived min_year filter", q.Label())
		}
	}
	// Lifetime total still includes the 2015 round.
	if got := res.Rows[0].Get("total_funding_usd"); got != "3500000" {
		t.Errorf("total_funding_usd = %q, want 3500000", got)
	}
}

func TestRunOne(t *testing.T) {
	t.Parallel()

	d := New(testStore(), Options{Job: "test"})

	res, err := d.RunOne(context.Background(), "HTTP://WWW.Tesla.COM/ir")
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}
	if res.Org == nil || res.Org.UUID != "org1" {
		t.Fatalf("RunOne org = %+v", res.Org)
	}
	if res.Totals.RoundCount != 2 {
		t.Errorf("RoundCount = %d, want 2", res.Totals.RoundCount)
	}
	if len(res.Buckets) != 3 {
		t.Errorf("buckets = %d, want 3 (dense span)", len(res.Buckets))
	}

	missing, err := d.RunOne(context.Background(), "nosuch.example")
	if err != nil {
		t.Fatalf("RunOne missing: %v", err)
	}
	if missing.Org != nil {
		t.Errorf("missing org = %+v, want nil", missing.Org)
	}

	if _, err := d.RunOne(context.Background(), "not a url"); err == nil {
		t.Error("RunOne with invalid identifier should fail")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	states := map[State]string{
		Pending:    "pending",
		Normalized: "normalized",
		Resolved:   "resolved",
		NotFound:   "not_found",
		Aggregated: "aggregated",
		Merged:     "merged",
		Failed:     "failed",
		State(99):  "unknown",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
