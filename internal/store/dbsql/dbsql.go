// Package dbsql implements store.Store over database/sql for every backend
// whose driver speaks the standard interface (sqlite, mysql, mssql). Only
// the placeholder syntax differs between those engines, so the SQL is built
// from a tiny Dialect and the scan code is shared.
package dbsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fundquery/internal/store"
)

// Dialect carries the per-engine differences.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite".
	Name string
	// Placeholder renders the i-th (1-based) bind parameter, e.g. "?" or "@p1".
	Placeholder func(i int) string
}

// Store is a database/sql-backed implementation of store.Store.
type Store struct {
	db *sql.DB
	d  Dialect
}

// New wraps an open database handle. Ownership of db transfers to the Store;
// Close releases it.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

func (s *Store) Close() error { return s.db.Close() }

const orgColumns = `uuid, name, website, website_url, description,
	short_description, founded_on, categories, category_groups, location,
	funding_stage, investor_stage, funding_total_usd, num_funding_rounds,
	num_investors`

const roundColumns = `uuid, org_uuid, name, announced_on, closed_on,
	raised_usd, raised_currency, investment_type, investment_stage,
	num_investors, post_money_usd, pre_money_usd, short_description`

const investmentColumns = `uuid, round_uuid, investor_name, is_lead, amount_usd`

// LookupOrganizationsByNormalizedURL prefilters with LIKE in SQL (cheap
// coarse match on either URL field) and then enforces exact normalized
// equality in Go, so substring look-alikes never leak through.
func (s *Store) LookupOrganizationsByNormalizedURL(ctx context.Context, key string) ([]store.Organization, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM organizations WHERE LOWER(website) LIKE %s OR LOWER(website_url) LIKE %s",
		orgColumns, s.d.Placeholder(1), s.d.Placeholder(2),
	)
	pat := "%" + strings.ToLower(key) + "%"

	rows, err := s.db.QueryContext(ctx, q, pat, pat)
	if err != nil {
		return nil, store.Unavailable(s.d.Name+": query organizations", err)
	}
	defer rows.Close()

	var candidates []store.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, store.Unavailable(s.d.Name+": scan organization", err)
		}
		candidates = append(candidates, org)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(s.d.Name+": iterate organizations", err)
	}
	return store.FilterExact(candidates, key), nil
}

// GetFundingRounds returns every round owned by orgUUID. Ordering is left to
// the caller; null-date placement differs across engines.
func (s *Store) GetFundingRounds(ctx context.Context, orgUUID string) ([]store.FundingRound, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM funding_rounds WHERE org_uuid = %s",
		roundColumns, s.d.Placeholder(1),
	)
	rows, err := s.db.QueryContext(ctx, q, orgUUID)
	if err != nil {
		return nil, store.Unavailable(s.d.Name+": query funding_rounds", err)
	}
	defer rows.Close()

	var out []store.FundingRound
	for rows.Next() {
		fr, err := scanFundingRound(rows)
		if err != nil {
			return nil, store.Unavailable(s.d.Name+": scan funding_round", err)
		}
		out = append(out, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(s.d.Name+": iterate funding_rounds", err)
	}
	return out, nil
}

// GetInvestments returns every investment owned by roundUUID.
func (s *Store) GetInvestments(ctx context.Context, roundUUID string) ([]store.Investment, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM investments WHERE round_uuid = %s",
		investmentColumns, s.d.Placeholder(1),
	)
	rows, err := s.db.QueryContext(ctx, q, roundUUID)
	if err != nil {
		return nil, store.Unavailable(s.d.Name+": query investments", err)
	}
	defer rows.Close()

	var out []store.Investment
	for rows.Next() {
		var (
			inv  store.Investment
			name sql.NullString
			lead flexBool
			amt  decimal.NullDecimal
		)
		if err := rows.Scan(&inv.UUID, &inv.RoundUUID, &name, &lead, &amt); err != nil {
			return nil, store.Unavailable(s.d.Name+": scan investment", err)
		}
		inv.InvestorName = name.String
		inv.IsLead = bool(lead)
		inv.AmountUSD = amt
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(s.d.Name+": iterate investments", err)
	}
	return out, nil
}

func scanOrganization(rows *sql.Rows) (store.Organization, error) {
	var (
		org                         store.Organization
		name, website, websiteURL   sql.NullString
		desc, shortDesc, foundedOn  sql.NullString
		categories, categoryGroups  sql.NullString
		location, fundingStage      sql.NullString
		investorStage               sql.NullString
		fundingTotal                decimal.NullDecimal
		numRounds, numInvestors     sql.NullInt64
	)
	err := rows.Scan(
		&org.UUID, &name, &website, &websiteURL, &desc,
		&shortDesc, &foundedOn, &categories, &categoryGroups, &location,
		&fundingStage, &investorStage, &fundingTotal, &numRounds,
		&numInvestors,
	)
	if err != nil {
		return store.Organization{}, err
	}
	org.Name = name.String
	org.Website = website.String
	org.WebsiteURL = websiteURL.String
	org.Description = desc.String
	org.ShortDescription = shortDesc.String
	org.FoundedOn = store.DateFromString(foundedOn.String)
	org.Categories = categories.String
	org.CategoryGroups = categoryGroups.String
	org.Location = location.String
	org.FundingStage = fundingStage.String
	org.InvestorStage = investorStage.String
	org.FundingTotalUSD = fundingTotal
	org.NumFundingRounds = numRounds.Int64
	org.NumInvestors = numInvestors.Int64
	return org, nil
}

func scanFundingRound(rows *sql.Rows) (store.FundingRound, error) {
	var (
		fr                       store.FundingRound
		name, announced, closed  sql.NullString
		currency, invType        sql.NullString
		invStage, shortDesc      sql.NullString
		raised, postVal, preVal  decimal.NullDecimal
		numInvestors             sql.NullInt64
	)
	err := rows.Scan(
		&fr.UUID, &fr.OrgUUID, &name, &announced, &closed,
		&raised, &currency, &invType, &invStage, &numInvestors,
		&postVal, &preVal, &shortDesc,
	)
	if err != nil {
		return store.FundingRound{}, err
	}
	fr.Name = name.String
	fr.AnnouncedOn = store.DateFromString(announced.String)
	fr.ClosedOn = store.DateFromString(closed.String)
	fr.RaisedUSD = raised
	fr.RaisedCurrency = currency.String
	fr.InvestmentType = invType.String
	fr.InvestmentStage = invStage.String
	fr.NumInvestors = numInvestors.Int64
	fr.PostMoneyUSD = postVal
	fr.PreMoneyUSD = preVal
	fr.ShortDescription = shortDesc.String
	return fr, nil
}
