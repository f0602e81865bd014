// Package funding collects an organization's funding rounds with their
// investors and derives lifetime totals and summary strings.
package funding

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"

	"fundquery/internal/store"
)

// RoundWithInvestors pairs a funding round with its investments.
type RoundWithInvestors struct {
	store.FundingRound
	Investors []store.Investment
}

// Totals are lifetime figures across every round of an organization,
// independent of any presentation-time year filter.
type Totals struct {
	TotalRaised   decimal.Decimal
	RoundCount    int
	InvestorCount int
}

// Collect fetches all rounds for orgUUID along with each round's
// investments. Rounds come back in announcement order (undated last, UUID
// as tiebreak) and investments with leads first, then by investor name.
func Collect(ctx context.Context, st store.Store, orgUUID string) ([]RoundWithInvestors, Totals, error) {
	rounds, err := st.GetFundingRounds(ctx, orgUUID)
	if err != nil {
		return nil, Totals{}, err
	}

	sort.Slice(rounds, func(i, j int) bool {
		a, b := rounds[i].AnnouncedOn, rounds[j].AnnouncedOn
		switch {
		case a == nil && b == nil:
			return rounds[i].UUID < rounds[j].UUID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return rounds[i].UUID < rounds[j].UUID
		}
	})

	out := make([]RoundWithInvestors, 0, len(rounds))
	totals := Totals{RoundCount: len(rounds)}
	investorSet := make(map[uint64]struct{})

	for _, fr := range rounds {
		invs, err := st.GetInvestments(ctx, fr.UUID)
		if err != nil {
			return nil, Totals{}, err
		}
		sort.Slice(invs, func(i, j int) bool {
			if invs[i].IsLead != invs[j].IsLead {
				return invs[i].IsLead
			}
			a := strings.ToLower(invs[i].InvestorName)
			b := strings.ToLower(invs[j].InvestorName)
			if a != b {
				return a < b
			}
			return invs[i].UUID < invs[j].UUID
		})

		if fr.RaisedUSD.Valid {
			totals.TotalRaised = totals.TotalRaised.Add(fr.RaisedUSD.Decimal)
		}
		for _, inv := range invs {
			name := strings.TrimSpace(strings.ToLower(inv.InvestorName))
			if name == "" {
				continue
			}
			investorSet[xxh3.HashString(name)] = struct{}{}
		}

		out = append(out, RoundWithInvestors{FundingRound: fr, Investors: invs})
	}
	totals.InvestorCount = len(investorSet)
	return out, totals, nil
}
