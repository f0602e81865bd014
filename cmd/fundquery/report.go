package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fundquery/internal/funding"
	"fundquery/internal/pipeline"
)

const reportRule = "================================================================================"

// printReport renders a single-lookup result for the terminal: the matched
// organization, each funding round, lifetime summary figures, a breakdown by
// round type, and the quarterly buckets.
func printReport(w io.Writer, res *pipeline.SingleResult) {
	fmt.Fprintf(w, "\nSearching for organization with URL: %s\n", res.Key)
	fmt.Fprintln(w, reportRule)

	if res.Org == nil {
		fmt.Fprintf(w, "\nNo organization found matching URL: %s\n", res.Key)
		fmt.Fprintln(w, "\nTip: try the bare domain (e.g. 'tesla.com' instead of 'https://tesla.com')")
		return
	}

	org := res.Org
	fmt.Fprintf(w, "\nFound organization: %s\n", org.Name)
	website := org.Website
	if website == "" {
		website = org.WebsiteURL
	}
	fmt.Fprintf(w, "  Website: %s\n", website)
	fmt.Fprintf(w, "  UUID: %s\n", org.UUID)
	if org.Location != "" {
		fmt.Fprintf(w, "  Location: %s\n", org.Location)
	}
	if org.Categories != "" {
		fmt.Fprintf(w, "  Categories: %s\n", org.Categories)
	}

	if len(res.Rounds) == 0 {
		fmt.Fprintln(w, "\nNo funding rounds found for this organization.")
		return
	}

	fmt.Fprintf(w, "\nFound %d funding rounds\n\n", len(res.Rounds))
	fmt.Fprintln(w, reportRule)

	for i, r := range res.Rounds {
		fmt.Fprintf(w, "\n[%d] %s\n", i+1, r.Name)
		if r.AnnouncedOn != nil {
			fmt.Fprintf(w, "    Announced: %s\n", r.AnnouncedOn.Format("2006-01-02"))
		}
		if r.ClosedOn != nil {
			fmt.Fprintf(w, "    Closed: %s\n", r.ClosedOn.Format("2006-01-02"))
		}
		if r.RaisedUSD.Valid {
			fmt.Fprintf(w, "    Amount: %s\n", funding.FormatCompact(r.RaisedUSD.Decimal))
		}
		if r.InvestmentType != "" {
			fmt.Fprintf(w, "    Type: %s\n", r.InvestmentType)
		}
		if r.InvestmentStage != "" {
			fmt.Fprintf(w, "    Stage: %s\n", r.InvestmentStage)
		}
		if len(r.Investors) > 0 {
			names := make([]string, 0, len(r.Investors))
			for _, inv := range r.Investors {
				n := inv.InvestorName
				if inv.IsLead {
					n += " (Lead)"
				}
				names = append(names, n)
			}
			fmt.Fprintf(w, "    Investors: %s\n", strings.Join(names, ", "))
		}
		if r.PostMoneyUSD.Valid {
			fmt.Fprintf(w, "    Post-Money Valuation: %s\n", funding.FormatCompact(r.PostMoneyUSD.Decimal))
		}
		if r.PreMoneyUSD.Valid {
			fmt.Fprintf(w, "    Pre-Money Valuation: %s\n", funding.FormatCompact(r.PreMoneyUSD.Decimal))
		}
		if r.ShortDescription != "" {
			fmt.Fprintf(w, "    Description: %s\n", r.ShortDescription)
		}
	}

	fmt.Fprintln(w, "\n"+reportRule)
	fmt.Fprintln(w, "\nSUMMARY:")
	fmt.Fprintf(w, "  Total Funding Rounds: %d\n", res.Totals.RoundCount)
	fmt.Fprintf(w, "  Distinct Investors: %d\n", res.Totals.InvestorCount)
	if !res.Totals.TotalRaised.IsZero() {
		fmt.Fprintf(w, "  Total Funding Amount: %s\n", funding.FormatCompact(res.Totals.TotalRaised))
	}

	byType := make(map[string]int)
	for _, r := range res.Rounds {
		if r.InvestmentType != "" {
			byType[r.InvestmentType]++
		}
	}
	if len(byType) > 0 {
		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool {
			if byType[types[i]] != byType[types[j]] {
				return byType[types[i]] > byType[types[j]]
			}
			return types[i] < types[j]
		})
		fmt.Fprintln(w, "\n  Rounds by Type:")
		for _, t := range types {
			fmt.Fprintf(w, "    - %s: %d\n", t, byType[t])
		}
	}

	if len(res.Buckets) > 0 {
		fmt.Fprintln(w, "\n  Funding by Quarter:")
		for _, b := range res.Buckets {
			if b.Total.IsZero() {
				continue
			}
			fmt.Fprintf(w, "    %s: %s\n", b.Quarter.Label(), funding.FormatUSD(b.Total))
		}
	}
}
