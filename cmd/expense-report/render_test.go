package main

import (
	"strings"
	"testing"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/analytics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

func TestRenderSummary(t *testing.T) {
	today := core.NewDate(2025, 3, 10)
	sum, ok := analytics.Summarize([]core.Expense{
		{ID: "1", Amount: core.Money{Cents: 10000}, Category: "Food", Date: today},
		{ID: "2", Amount: core.Money{Cents: 5000}, Category: "Transport", Date: today},
	}, today)

	out := render("u1", sum, ok)
	for _, want := range []string{"Expenses for u1", "$150.00", "$5.00", "66.7%", "33.3%", "Food", "Transport", "since 2025-02-08"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	out := render("u1", analytics.Summary{}, false)
	if !strings.Contains(out, "No expenses recorded.") {
		t.Fatalf("expected empty notice, got %q", out)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		pct  float64
		full int
	}{
		{0, 0},
		{50, 12},
		{100, barWidth},
		{150, barWidth},
	}
	for _, tt := range tests {
		got := strings.Count(bar(tt.pct), "█")
		if got != tt.full {
			t.Errorf("bar(%v) filled %d, want %d", tt.pct, got, tt.full)
		}
	}
}
