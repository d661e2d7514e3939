package clean

import (
	"testing"
)

func TestParseISIN(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"US037833EN61", "US037833EN61"},
		{" us037833en61 ", "US037833EN61"},
		{"XS1234567890", "XS1234567890"},
		{"INVALID123", ""},   // too short
		{"1234567890AB", ""}, // digits where letters must be
		{"US03783 EN61", ""},
		{"US037833EN610", ""}, // too long
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := ParseISIN(tc.raw); got != tc.want {
				t.Fatalf("ParseISIN(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{"3.25%", fptr(3.25)},
		{"3,25", fptr(3.25)},
		{"4.5 %", fptr(4.5)},
		{"0", fptr(0)},
		{"20", fptr(20)},
		{"325", fptr(3.25)},   // basis points
		{"2000", fptr(20)},    // upper edge of the bp range
		{"20.5", fptr(0.205)}, // just above 20 lands in the bp range
		{"2001", nil},
		{"-1.0", nil},
		{"abc", nil},
		{"N/A", nil},
		{"", nil},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got := ParseRate(tc.raw)
			assertFloatPtr(t, got, tc.want)
		})
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{"98.36", fptr(98.36)},
		{" 101 ", fptr(101)},
		{"30", fptr(30)},
		{"200", fptr(200)},
		{"29.99", nil},
		{"200.01", nil},
		{"1,234", nil}, // thousands stripped, then out of range
		{"12.5", nil},
		{"—", nil},
		{"par", nil},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got := ParsePrice(tc.raw)
			assertFloatPtr(t, got, tc.want)
		})
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		raw  string
		want string // RFC3339 date, "" for nil
	}{
		{"08/08/2029", "2029-08-08"},
		{"2029-08-08", "2029-08-08"},
		{"05/06/2029", "2029-06-05"}, // ambiguous, day-first wins
		{"01/13/2029", "2029-01-13"}, // impossible day-first, month-first catches it
		{"31.12.2030", "2030-12-31"},
		{"15 March 2031", "2031-03-15"},
		{"Mar 3, 2031", "2031-03-03"},
		{"8/8/2029", "2029-08-08"}, // unpadded, generic tier
		{"August 2029", "2029-08-01"},
		{"20290808", "2029-08-08"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got := ParseDate(tc.raw)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("ParseDate(%q) = %v, want nil", tc.raw, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseDate(%q) = nil, want %s", tc.raw, tc.want)
			}
			if got.Format("2006-01-02") != tc.want {
				t.Fatalf("ParseDate(%q) = %s, want %s", tc.raw, got.Format("2006-01-02"), tc.want)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"AA+", "AA+"},
		{"bbb+", "BBB+"},
		{"A-", "A-"},
		{"CCC", "CCC"},
		{"AA (sf)", "AA"},
		{"(P)BBB", "BBB"},
		{"D", "D"},
		{"d", "D"},
		{"Aa2", ""}, // numeric notch is outside the grammar
		{"AAAA", ""},
		{"DD", ""},
		{"investment grade", ""},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := ParseRating(tc.raw); got != tc.want {
				t.Fatalf("ParseRating(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEnumNormalizers(t *testing.T) {
	if got := normalizeCouponType("FRN"); got != "floating" {
		t.Fatalf("coupon type FRN = %q", got)
	}
	if got := normalizeCouponType("Zero Coupon"); got != "zero" {
		t.Fatalf("coupon type zero = %q", got)
	}
	if got := normalizeCouponType("step-up"); got != "" {
		t.Fatalf("unknown coupon type = %q", got)
	}
	if got := normalizeFrequency("2"); got != "semi-annual" {
		t.Fatalf("frequency 2 = %q", got)
	}
	if got := normalizeFrequency("Quarterly"); got != "quarterly" {
		t.Fatalf("frequency quarterly = %q", got)
	}
	if got := normalizeSeniority("Senior Unsecured"); got != "senior" {
		t.Fatalf("seniority senior unsecured = %q", got)
	}
	if got := normalizeSeniority("Tier 2 Subordinated"); got != "subordinated" {
		t.Fatalf("seniority subordinated = %q", got)
	}
	if got := normalizeCurrency("usd"); got != "USD" {
		t.Fatalf("currency usd = %q", got)
	}
	if got := normalizeCurrency("Euro"); got != "" {
		t.Fatalf("currency Euro = %q", got)
	}
}

func fptr(v float64) *float64 { return &v }

func assertFloatPtr(t *testing.T, got, want *float64) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("got %v, want nil", *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("got nil, want %v", *want)
	}
	if *got != *want {
		t.Fatalf("got %v, want %v", *got, *want)
	}
}
