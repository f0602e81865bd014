package rows

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fundquery/internal/normalize"
)

// identifierAliases are header names recognized as the company URL column,
// compared after canonicalization.
var identifierAliases = map[string]bool{
	"url":            true,
	"website":        true,
	"websiteurl":     true,
	"domain":         true,
	"site":           true,
	"web":            true,
	"companyurl":     true,
	"companywebsite": true,
	"homepage":       true,
}

// detectSampleSize caps how many rows value-based detection inspects.
const detectSampleSize = 25

// IdentifierColumn locates the column holding company URLs. Header names
// are tried first against the alias set; failing that, up to
// detectSampleSize rows are sampled and the column whose non-empty values
// are mostly host-shaped wins. Returns ErrNoIdentifierColumn when neither
// strategy finds one.
func IdentifierColumn(header []string, rs []Row) (int, error) {
	for i, h := range header {
		if identifierAliases[canonicalHeader(h)] {
			return i, nil
		}
	}

	n := len(rs)
	if n > detectSampleSize {
		n = detectSampleSize
	}
	best, bestScore := -1, 0
	for col := range header {
		hosts, nonEmpty := 0, 0
		for _, r := range rs[:n] {
			if col >= len(r.Values) {
				continue
			}
			v := strings.TrimSpace(r.Values[col])
			if v == "" {
				continue
			}
			nonEmpty++
			if _, err := normalize.Key(v); err == nil {
				hosts++
			}
		}
		if nonEmpty == 0 || hosts*2 <= nonEmpty {
			continue
		}
		if hosts > bestScore {
			best, bestScore = col, hosts
		}
	}
	if best < 0 {
		return 0, ErrNoIdentifierColumn
	}
	return best, nil
}

// canonicalHeader lowercases, strips diacritics and drops separators so
// "Website URL", "website_url" and "Wébsite-URL" all compare equal.
func canonicalHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, h)
	if err != nil {
		folded = h
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch r {
		case ' ', '\t', '_', '-', '.':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
