package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]int64{
		"0":       0,
		"7":       700,
		"19.9":    1990,
		"19,99":   1999,
		" 4.20 ":  420,
		"0.004":   0,
		"0.005":   1, // half-up
		"2.345":   235,
		"12.345":  1235,
		"1234.56": 123456,
	}
	for in, want := range valid {
		t.Run("ok/"+in, func(t *testing.T) {
			got, err := ParseAmount(in)
			if err != nil {
				t.Fatalf("ParseAmount(%q) error = %v", in, err)
			}
			if got.Cents != want {
				t.Errorf("ParseAmount(%q) = %d cents, want %d", in, got.Cents, want)
			}
		})
	}

	for _, in := range []string{"", "  ", "-0.50", "+3", "ten", "4.2.0", "1e3", "2E-1", "1e30", "$5"} {
		t.Run("bad/"+in, func(t *testing.T) {
			if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", in, err)
			}
		})
	}
}

func TestMoneyRendering(t *testing.T) {
	tests := []struct {
		cents    int64
		plain    string
		currency string
	}{
		{0, "0.00", "$0.00"},
		{7, "0.07", "$0.07"},
		{99999, "999.99", "$999.99"},
		{100000, "1000.00", "$1,000.00"},
		{123456789, "1234567.89", "$1,234,567.89"},
		{-250, "-2.50", "-$2.50"},
	}
	for _, tt := range tests {
		m := Money{Cents: tt.cents}
		if got := m.String(); got != tt.plain {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.plain)
		}
		if got := m.FormatCurrency(); got != tt.currency {
			t.Errorf("Money{%d}.FormatCurrency() = %q, want %q", tt.cents, got, tt.currency)
		}
	}
}

func TestMoneyAddAndDecimal(t *testing.T) {
	sum := Money{Cents: 1050}.Add(Money{Cents: 295})
	if sum.Cents != 1345 {
		t.Fatalf("Add = %d, want 1345", sum.Cents)
	}
	if got := sum.Decimal().String(); got != "13.45" {
		t.Errorf("Decimal() = %s, want 13.45", got)
	}
}
