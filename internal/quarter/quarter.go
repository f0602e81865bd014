// Package quarter buckets funding rounds into calendar quarters.
package quarter

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fundquery/internal/store"
)

// Quarter is a calendar quarter, e.g. 2021-Q3. Q runs 1 through 4.
type Quarter struct {
	Year int
	Q    int
}

// Of returns the quarter containing t.
func Of(t time.Time) Quarter {
	return Quarter{Year: t.Year(), Q: (int(t.Month())-1)/3 + 1}
}

// Label renders the canonical column label, e.g. "2021-Q3".
func (q Quarter) Label() string {
	return fmt.Sprintf("%d-Q%d", q.Year, q.Q)
}

// Before reports whether q precedes o chronologically.
func (q Quarter) Before(o Quarter) bool {
	if q.Year != o.Year {
		return q.Year < o.Year
	}
	return q.Q < o.Q
}

// Next returns the quarter immediately after q.
func (q Quarter) Next() Quarter {
	if q.Q == 4 {
		return Quarter{Year: q.Year + 1, Q: 1}
	}
	return Quarter{Year: q.Year, Q: q.Q + 1}
}

// Parse inverts Label. It accepts only the "YYYY-QN" form.
func Parse(s string) (Quarter, error) {
	var q Quarter
	if _, err := fmt.Sscanf(s, "%d-Q%d", &q.Year, &q.Q); err != nil {
		return Quarter{}, fmt.Errorf("quarter: parse %q: %w", s, err)
	}
	if q.Q < 1 || q.Q > 4 {
		return Quarter{}, fmt.Errorf("quarter: parse %q: quarter out of range", s)
	}
	return q, nil
}

// Bucket is one quarter's summed raised capital.
type Bucket struct {
	Quarter Quarter
	Total   decimal.Decimal
}

// EffectiveDate returns the date a round is bucketed under: closed_on when
// present, otherwise announced_on. Nil means the round is undatable and is
// excluded from quarter buckets (it still counts toward lifetime totals).
func EffectiveDate(fr store.FundingRound) *time.Time {
	if fr.ClosedOn != nil {
		return fr.ClosedOn
	}
	return fr.AnnouncedOn
}

// Aggregate buckets rounds by quarter and returns a dense ascending span
// from the earliest to the latest observed quarter, zero-filled in between.
// Rounds with no usable date or no usable amount contribute nothing here.
//
// minYear, when positive, trims the presentation: quarters before Jan 1 of
// minYear are dropped from the result. It never changes how much any kept
// quarter sums to.
func Aggregate(rounds []store.FundingRound, minYear int) []Bucket {
	totals := make(map[Quarter]decimal.Decimal)
	var lo, hi Quarter
	seen := false

	for _, fr := range rounds {
		d := EffectiveDate(fr)
		if d == nil || !fr.RaisedUSD.Valid {
			continue
		}
		q := Of(*d)
		totals[q] = totals[q].Add(fr.RaisedUSD.Decimal)
		if !seen {
			lo, hi, seen = q, q, true
			continue
		}
		if q.Before(lo) {
			lo = q
		}
		if hi.Before(q) {
			hi = q
		}
	}
	if !seen {
		return nil
	}

	if minYear > 0 {
		floor := Quarter{Year: minYear, Q: 1}
		if hi.Before(floor) {
			return nil
		}
		if lo.Before(floor) {
			lo = floor
		}
	}

	var out []Bucket
	for q := lo; !hi.Before(q); q = q.Next() {
		out = append(out, Bucket{Quarter: q, Total: totals[q]})
	}
	return out
}
