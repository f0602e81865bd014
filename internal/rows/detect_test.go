package rows

import (
	"errors"
	"testing"
)

func table(header []string, vals ...[]string) ([]string, []Row) {
	rs := make([]Row, len(vals))
	for i, v := range vals {
		rs[i] = Row{Columns: header, Values: v}
	}
	return header, rs
}

func TestIdentifierColumnByHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header []string
		want   int
	}{
		{[]string{"name", "url"}, 1},
		{[]string{"Website", "name"}, 0},
		{[]string{"name", "Website URL", "x"}, 1},
		{[]string{"name", "website_url"}, 1},
		{[]string{"Company-Website", "name"}, 0},
		{[]string{"DOMAIN"}, 0},
		{[]string{"homepage", "name"}, 0},
	}
	for _, tc := range tests {
		got, err := IdentifierColumn(tc.header, nil)
		if err != nil {
			t.Errorf("IdentifierColumn(%v): %v", tc.header, err)
			continue
		}
		if got != tc.want {
			t.Errorf("IdentifierColumn(%v) = %d, want %d", tc.header, got, tc.want)
		}
	}
}

func TestIdentifierColumnByValueSampling(t *testing.T) {
	t.Parallel()

	header, rs := table([]string{"name", "col_2"},
		[]string{"Tesla", "tesla.com"},
		[]string{"SpaceX", "https://spacex.com"},
		[]string{"Stripe", "stripe.com"},
	)
	got, err := IdentifierColumn(header, rs)
	if err != nil {
		t.Fatalf("IdentifierColumn: %v", err)
	}
	if got != 1 {
		t.Errorf("IdentifierColumn = %d, want 1", got)
	}
}

func TestIdentifierColumnMajorityRule(t *testing.T) {
	t.Parallel()

	// One host-shaped value among many plain names is not enough.
	header, rs := table([]string{"name"},
		[]string{"Tesla"},
		[]string{"spacex.com"},
		[]string{"Stripe"},
		[]string{"Plaid"},
	)
	if _, err := IdentifierColumn(header, rs); !errors.Is(err, ErrNoIdentifierColumn) {
		t.Fatalf("err = %v, want ErrNoIdentifierColumn", err)
	}
}

func TestIdentifierColumnNotFound(t *testing.T) {
	t.Parallel()

	header, rs := table([]string{"name", "city"},
		[]string{"Tesla", "Austin"},
	)
	_, err := IdentifierColumn(header, rs)
	if !errors.Is(err, ErrNoIdentifierColumn) {
		t.Fatalf("err = %v, want ErrNoIdentifierColumn", err)
	}
}

func TestCanonicalHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Website URL", "websiteurl"},
		{"website_url", "websiteurl"},
		{"Wébsite-URL", "websiteurl"},
		{"  URL  ", "url"},
	}
	for _, tc := range tests {
		if got := canonicalHeader(tc.in); got != tc.want {
			t.Errorf("canonicalHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
