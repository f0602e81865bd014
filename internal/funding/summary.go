package funding

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"fundquery/internal/store"
)

// CompanyInfo flattens an organization's profile into a single pipe-joined
// string suitable for a CSV cell. Empty fields are skipped.
func CompanyInfo(org *store.Organization) string {
	if org == nil {
		return ""
	}
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("Name", org.Name)
	add("Description", org.ShortDescription)
	add("Full Description", org.Description)
	if org.FoundedOn != nil {
		add("Founded", org.FoundedOn.Format("2006-01-02"))
	}
	add("Categories", org.Categories)
	add("Category Groups", org.CategoryGroups)
	add("Location", org.Location)
	add("Funding Stage", org.FundingStage)
	add("Investor Stage", org.InvestorStage)
	if org.NumFundingRounds > 0 {
		add("Number of Funding Rounds", fmt.Sprintf("%d", org.NumFundingRounds))
	}
	if org.NumInvestors > 0 {
		add("Number of Investors", fmt.Sprintf("%d", org.NumInvestors))
	}
	return strings.Join(parts, " | ")
}

// FundingInfo flattens rounds into one pipe-joined string, one bracketed
// segment per round.
func FundingInfo(rounds []RoundWithInvestors) string {
	parts := make([]string, 0, len(rounds))
	for _, r := range rounds {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s]", r.Name)
		if r.AnnouncedOn != nil {
			fmt.Fprintf(&b, " Announced: %s", r.AnnouncedOn.Format("2006-01-02"))
		}
		if r.ClosedOn != nil {
			fmt.Fprintf(&b, " Closed: %s", r.ClosedOn.Format("2006-01-02"))
		}
		if r.RaisedUSD.Valid {
			fmt.Fprintf(&b, " Amount: %s", FormatUSD(r.RaisedUSD.Decimal))
		}
		if r.InvestmentType != "" {
			fmt.Fprintf(&b, " Type: %s", r.InvestmentType)
		}
		if r.InvestmentStage != "" {
			fmt.Fprintf(&b, " Stage: %s", r.InvestmentStage)
		}
		if r.PostMoneyUSD.Valid {
			fmt.Fprintf(&b, " Post-Money Valuation: %s", FormatUSD(r.PostMoneyUSD.Decimal))
		}
		if r.PreMoneyUSD.Valid {
			fmt.Fprintf(&b, " Pre-Money Valuation: %s", FormatUSD(r.PreMoneyUSD.Decimal))
		}
		if len(r.Investors) > 0 {
			names := make([]string, 0, len(r.Investors))
			for _, inv := range r.Investors {
				s := inv.InvestorName
				if s == "" {
					s = "Unknown"
				}
				if inv.IsLead {
					s += " (Lead)"
				}
				if inv.AmountUSD.Valid {
					s += " (" + FormatUSD(inv.AmountUSD.Decimal) + ")"
				}
				names = append(names, s)
			}
			fmt.Fprintf(&b, " Investors: %s", strings.Join(names, ", "))
		}
		if r.ShortDescription != "" {
			fmt.Fprintf(&b, " Details: %s", r.ShortDescription)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " | ")
}

// FormatUSD renders a dollar amount with thousands separators and no cents,
// e.g. "$5,000,000".
func FormatUSD(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

// FormatCompact renders a dollar amount in short form for terminal reports,
// e.g. "$1.50M" or "$2.00B".
func FormatCompact(d decimal.Decimal) string {
	f, _ := d.Float64()
	switch {
	case f >= 1e9:
		return fmt.Sprintf("$%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("$%.2fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("$%.2fK", f/1e3)
	default:
		return fmt.Sprintf("$%.2f", f)
	}
}
