package pdf

import (
	"testing"
	"time"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{300, "300,00 €"},
		{0, "0,00 €"},
		{60, "60,00 €"},
		{1234.5, "1 234,50 €"},
		{1234567.891, "1 234 567,89 €"},
		{0.5, "0,50 €"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "15/03/2024" {
		t.Fatalf("FormatDate = %q, want 15/03/2024", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := formatNumber(20); got != "20" {
		t.Fatalf("formatNumber(20) = %q", got)
	}
	if got := formatNumber(5.5); got != "5,5" {
		t.Fatalf("formatNumber(5.5) = %q", got)
	}
}
