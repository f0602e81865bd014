// Package store defines the read-side collaborator contract for the funding
// dataset: three relational tables (organizations, funding_rounds,
// investments) exposed through a narrow Store interface, plus a factory
// registry so the engine stays backend-agnostic.
//
// Concrete backends (sqlite, postgres, mysql, mssql) live in subpackages and
// register themselves at init time; importing fundquery/internal/store/all
// (even blank) makes every built-in backend available to New.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fundquery/internal/normalize"
)

// ErrUnavailable marks a collaborator failure: the store could not be
// queried. It aborts only the current identifier's resolution, never the
// whole run. Use errors.Is to classify.
var ErrUnavailable = errors.New("store unavailable")

// Unavailable wraps err (and op context) with ErrUnavailable so callers can
// classify backend failures uniformly across drivers.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}

// Organization is one row of the organizations table. The engine holds
// read-only references and never mutates stored records.
type Organization struct {
	UUID             string
	Name             string
	Website          string
	WebsiteURL       string
	Description      string
	ShortDescription string
	FoundedOn        *time.Time
	Categories       string
	CategoryGroups   string
	Location         string
	FundingStage     string
	InvestorStage    string
	FundingTotalUSD  decimal.NullDecimal
	NumFundingRounds int64
	NumInvestors     int64
}

// FundingRound is one row of the funding_rounds table. Many rounds may
// reference one organization.
type FundingRound struct {
	UUID             string
	OrgUUID          string
	Name             string
	AnnouncedOn      *time.Time
	ClosedOn         *time.Time
	RaisedUSD        decimal.NullDecimal
	RaisedCurrency   string
	InvestmentType   string
	InvestmentStage  string
	NumInvestors     int64
	PostMoneyUSD     decimal.NullDecimal
	PreMoneyUSD      decimal.NullDecimal
	ShortDescription string
}

// Investment is one row of the investments table. Many investments may
// reference one funding round.
type Investment struct {
	UUID         string
	RoundUUID    string
	InvestorName string
	IsLead       bool
	AmountUSD    decimal.NullDecimal
}

// Store is the minimal read capability the engine consumes. Lookups are
// exact-match on the normalized key; backends may prefilter in SQL but must
// return only organizations whose URL fields normalize to the key.
type Store interface {
	// LookupOrganizationsByNormalizedURL returns every organization whose
	// stored website or website_url normalizes to key, in ascending UUID
	// order. An empty result is not an error.
	LookupOrganizationsByNormalizedURL(ctx context.Context, key string) ([]Organization, error)

	// GetFundingRounds returns all funding rounds owned by orgUUID, in no
	// particular order. An empty result is valid.
	GetFundingRounds(ctx context.Context, orgUUID string) ([]FundingRound, error)

	// GetInvestments returns all investments owned by roundUUID, in no
	// particular order. An empty result is valid.
	GetInvestments(ctx context.Context, roundUUID string) ([]Investment, error)

	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind string // "sqlite", "postgres", "mysql", "mssql"
	DSN  string
}

// Factory constructs a Store for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the Factory for a backend kind. It is
// typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Store for cfg.Kind. Kinds become available by importing the
// corresponding backend package (or fundquery/internal/store/all).
func New(ctx context.Context, cfg Config) (Store, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no store backend registered for kind=%q", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// MatchesKey reports whether org's stored URL fields normalize to exactly
// key. Substring matches never count; "myteslaclub.com" does not match
// "tesla.com".
func MatchesKey(org Organization, key string) bool {
	for _, raw := range []string{org.Website, org.WebsiteURL} {
		if raw == "" {
			continue
		}
		if k, err := normalize.Key(raw); err == nil && k == key {
			return true
		}
	}
	return false
}

// FilterExact keeps only candidates that MatchesKey and returns them in
// ascending UUID order, giving deterministic collision handling downstream.
func FilterExact(candidates []Organization, key string) []Organization {
	out := candidates[:0:0]
	for _, c := range candidates {
		if MatchesKey(c, key) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out
}

// DateFromString parses an ISO-8601 date (YYYY-MM-DD). It returns nil for
// empty or unparseable input; dates in this dataset are best-effort.
func DateFromString(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
