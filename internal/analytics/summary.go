// Package analytics derives spending summaries from a user's expense history.
//
// Summarize is pure: it performs no I/O and never reads the clock, so the
// caller passes "today" explicitly.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

// RecentWindowDays is the length of the rolling window, and the fixed divisor
// of DailyAverage regardless of how many days actually carry spending.
const RecentWindowDays = 30

var (
	hundred    = decimal.NewFromInt(100)
	windowDays = decimal.NewFromInt(RecentWindowDays)
)

// CategoryShare is one row of the category breakdown.
type CategoryShare struct {
	Category   string
	Amount     core.Money
	Percentage float64 // 0..100; 0 when the overall total is 0
}

// Summary is the result of aggregating an expense set.
type Summary struct {
	Total        core.Money
	Categories   []CategoryShare // descending by Amount, ties in first-seen order
	RecentTotal  core.Money      // expenses dated on or after Today-30d
	DailyAverage core.Money      // RecentTotal / 30, half-up to cents
	Count        int
	Today        core.Date
}

// Summarize aggregates expenses as of today. ok is false when there is
// nothing to display (empty input).
func Summarize(expenses []core.Expense, today core.Date) (Summary, bool) {
	if len(expenses) == 0 {
		return Summary{}, false
	}

	cutoff := today.AddDays(-RecentWindowDays)

	var total, recent core.Money
	index := make(map[string]int)
	var shares []CategoryShare
	for _, e := range expenses {
		total = total.Add(e.Amount)
		if e.Date.OnOrAfter(cutoff) {
			recent = recent.Add(e.Amount)
		}
		i, seen := index[e.Category]
		if !seen {
			i = len(shares)
			index[e.Category] = i
			shares = append(shares, CategoryShare{Category: e.Category})
		}
		shares[i].Amount = shares[i].Amount.Add(e.Amount)
	}

	for i := range shares {
		shares[i].Percentage = percentage(shares[i].Amount, total)
	}
	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].Amount.Cents > shares[b].Amount.Cents
	})

	return Summary{
		Total:        total,
		Categories:   shares,
		RecentTotal:  recent,
		DailyAverage: dailyAverage(recent),
		Count:        len(expenses),
		Today:        today,
	}, true
}

func percentage(part, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	pct := decimal.NewFromInt(part.Cents).Mul(hundred).Div(decimal.NewFromInt(total.Cents))
	f, _ := pct.Float64()
	return f
}

func dailyAverage(recent core.Money) core.Money {
	avg := decimal.NewFromInt(recent.Cents).Div(windowDays).Round(0)
	return core.Money{Cents: avg.IntPart()}
}
