package rows

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadAll parses a CSV stream into a header and rows. Real-world exports
// are messy, so parsing is forgiving: a UTF-8 BOM is stripped, quoting is
// lazy, ragged records are allowed, blank header cells get synthetic col_N
// names, and short rows are padded to header width.
//
// With noHeader set, the first record is data and every column name is
// synthesized.
func ReadAll(r io.Reader, noHeader bool) ([]string, []Row, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	var header []string
	var out []Row
	first := true

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if noHeader {
				header = syntheticHeader(len(rec))
			} else {
				header = cleanHeader(rec)
				continue
			}
		}
		out = append(out, Row{Columns: header, Values: fit(rec, len(header))})
	}
	if header == nil {
		return nil, nil, fmt.Errorf("read csv: empty input")
	}
	return header, out, nil
}

// WriteAll writes the header and rows back out, padding each row to its own
// column count.
func WriteAll(w io.Writer, header []string, rs []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range rs {
		if err := cw.Write(fit(r.Values, len(r.Columns))); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cleanHeader(rec []string) []string {
	h := make([]string, len(rec))
	for i, c := range rec {
		c = strings.TrimSpace(c)
		if c == "" {
			c = fmt.Sprintf("col_%d", i+1)
		}
		h[i] = c
	}
	return h
}

func syntheticHeader(n int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = fmt.Sprintf("col_%d", i+1)
	}
	return h
}

// fit pads vals with "" or truncates it to exactly n entries.
func fit(vals []string, n int) []string {
	switch {
	case len(vals) == n:
		return vals
	case len(vals) > n:
		return vals[:n]
	default:
		out := make([]string, n)
		copy(out, vals)
		return out
	}
}
