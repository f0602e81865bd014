package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"fundquery/internal/store"
)

const testSchema = `
CREATE TABLE organizations (
	uuid TEXT PRIMARY KEY,
	name TEXT,
	website TEXT,
	website_url TEXT,
	description TEXT,
	short_description TEXT,
	founded_on TEXT,
	categories TEXT,
	category_groups TEXT,
	location TEXT,
	funding_stage TEXT,
	investor_stage TEXT,
	funding_total_usd REAL,
	num_funding_rounds INTEGER,
	num_investors INTEGER
);
CREATE TABLE funding_rounds (
	uuid TEXT PRIMARY KEY,
	org_uuid TEXT,
	name TEXT,
	announced_on TEXT,
	closed_on TEXT,
	raised_usd REAL,
	raised_currency TEXT,
	investment_type TEXT,
	investment_stage TEXT,
	num_investors INTEGER,
	post_money_usd REAL,
	pre_money_usd REAL,
	short_description TEXT
);
CREATE TABLE investments (
	uuid TEXT PRIMARY KEY,
	round_uuid TEXT,
	investor_name TEXT,
	is_lead INTEGER,
	amount_usd REAL
);
`

// openSeededStore builds a shared in-memory database, seeds it, and wraps it
// in the sqlite store.
func openSeededStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	seed, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	t.Cleanup(func() { seed.Close() })

	if _, err := seed.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	stmts := []string{
		`INSERT INTO organizations (uuid, name, website, website_url, founded_on, location, num_funding_rounds)
		 VALUES ('org1', 'Tesla', 'https://www.tesla.com', 'tesla.com', '2003-07-01', 'Austin, Texas', 2)`,
		`INSERT INTO organizations (uuid, name, website)
		 VALUES ('org2', 'My Tesla Club', 'myteslaclub.com')`,
		`INSERT INTO organizations (uuid, name, website)
		 VALUES ('org3', 'Tesla Mirror', 'WWW.TESLA.COM/en')`,
		`INSERT INTO funding_rounds (uuid, org_uuid, name, announced_on, closed_on, raised_usd, investment_type)
		 VALUES ('r1', 'org1', 'Series A', '2004-02-01', '2004-04-15', 7500000, 'series_a')`,
		`INSERT INTO funding_rounds (uuid, org_uuid, name, announced_on)
		 VALUES ('r2', 'org1', 'Grant', '2007-01-01')`,
		`INSERT INTO investments (uuid, round_uuid, investor_name, is_lead, amount_usd)
		 VALUES ('i1', 'r1', 'Acme Ventures', 1, 6000000)`,
		`INSERT INTO investments (uuid, round_uuid, investor_name, is_lead)
		 VALUES ('i2', 'r1', 'Beta Capital', 0)`,
	}
	for _, s := range stmts {
		if _, err := seed.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	st, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Error("Open with empty DSN should fail")
	}

	st, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	st.Close()
}

func TestLookupExactMatchOnly(t *testing.T) {
	st := openSeededStore(t)

	got, err := st.LookupOrganizationsByNormalizedURL(context.Background(), "tesla.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	// org1 and org3 normalize to tesla.com; org2 is a substring look-alike
	// the LIKE prefilter sees but the exact filter must drop.
	if len(got) != 2 {
		t.Fatalf("got %d orgs, want 2: %+v", len(got), got)
	}
	if got[0].UUID != "org1" || got[1].UUID != "org3" {
		t.Errorf("order = [%s %s], want [org1 org3]", got[0].UUID, got[1].UUID)
	}
	if got[0].Name != "Tesla" || got[0].Location != "Austin, Texas" {
		t.Errorf("org1 fields = %+v", got[0])
	}
	if got[0].FoundedOn == nil || got[0].FoundedOn.Format("2006-01-02") != "2003-07-01" {
		t.Errorf("org1 founded_on = %v", got[0].FoundedOn)
	}
}

func TestLookupNotFound(t *testing.T) {
	st := openSeededStore(t)

	got, err := st.LookupOrganizationsByNormalizedURL(context.Background(), "nosuch.example")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

func TestGetFundingRounds(t *testing.T) {
	st := openSeededStore(t)

	rounds, err := st.GetFundingRounds(context.Background(), "org1")
	if err != nil {
		t.Fatalf("GetFundingRounds: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("got %d rounds, want 2", len(rounds))
	}

	var seriesA store.FundingRound
	for _, r := range rounds {
		if r.UUID == "r1" {
			seriesA = r
		}
	}
	if !seriesA.RaisedUSD.Valid || seriesA.RaisedUSD.Decimal.IntPart() != 7500000 {
		t.Errorf("raised_usd = %+v, want 7500000", seriesA.RaisedUSD)
	}
	if seriesA.ClosedOn == nil || seriesA.ClosedOn.Format("2006-01-02") != "2004-04-15" {
		t.Errorf("closed_on = %v", seriesA.ClosedOn)
	}
	if seriesA.InvestmentType != "series_a" {
		t.Errorf("investment_type = %q", seriesA.InvestmentType)
	}
}

func TestGetInvestments(t *testing.T) {
	st := openSeededStore(t)

	invs, err := st.GetInvestments(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetInvestments: %v", err)
	}
	if len(invs) != 2 {
		t.Fatalf("got %d investments, want 2", len(invs))
	}
	byName := map[string]store.Investment{}
	for _, inv := range invs {
		byName[inv.InvestorName] = inv
	}
	if !byName["Acme Ventures"].IsLead {
		t.Error("Acme Ventures should be lead")
	}
	if byName["Beta Capital"].IsLead {
		t.Error("Beta Capital should not be lead")
	}
	if amt := byName["Acme Ventures"].AmountUSD; !amt.Valid || amt.Decimal.IntPart() != 6000000 {
		t.Errorf("Acme amount = %+v", amt)
	}
	if byName["Beta Capital"].AmountUSD.Valid {
		t.Error("Beta Capital amount should be null")
	}
}
