// Package rows reads and writes caller CSV tables, finds the identifier
// column, and merges funding summaries back onto the original rows without
// disturbing caller data.
package rows

import "errors"

// ErrNoIdentifierColumn means no column could be identified as holding
// company URLs, neither by header name nor by sampling values.
var ErrNoIdentifierColumn = errors.New("no identifier column found")

// Row is one CSV record. Columns is the shared table header; Values is
// parallel to it.
type Row struct {
	Columns []string
	Values  []string
}

// Get returns the value under the named column, or "" when absent.
func (r Row) Get(name string) string {
	for i, c := range r.Columns {
		if c == name && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return ""
}

// Clone returns a deep copy of the row's values. Columns stays shared since
// headers are immutable once read.
func (r Row) Clone() Row {
	vals := make([]string, len(r.Values))
	copy(vals, r.Values)
	return Row{Columns: r.Columns, Values: vals}
}

// Append extends the row with extra columns and values. Columns is copied
// first because the header slice is shared across rows.
func (r *Row) Append(cols, vals []string) {
	r.Columns = append(append([]string(nil), r.Columns...), cols...)
	r.Values = append(r.Values, vals...)
}
