package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/analytics"
)

const barWidth = 24

var (
	colorAccent  = lipgloss.Color("#f5c2e7")
	colorText    = lipgloss.Color("#cdd6f4")
	colorSubtext = lipgloss.Color("#a6adc8")
	colorBar     = lipgloss.Color("#89b4fa")
	colorBorder  = lipgloss.Color("#585b70")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	barStyle   = lipgloss.NewStyle().Foreground(colorBar)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// render lays out the summary as three stat boxes over a category table.
func render(userID string, sum analytics.Summary, ok bool) string {
	title := titleStyle.Render("Expenses for " + userID)
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left, title, labelStyle.Render("No expenses recorded."))
	}

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total", sum.Total.FormatCurrency(), fmt.Sprintf("%d expenses", sum.Count)),
		stat("Last 30 days", sum.RecentTotal.FormatCurrency(), "since "+sum.Today.AddDays(-analytics.RecentWindowDays).String()),
		stat("Daily average", sum.DailyAverage.FormatCurrency(), "over 30 days"),
	)

	nameWidth := 0
	for _, c := range sum.Categories {
		nameWidth = max(nameWidth, lipgloss.Width(c.Category))
	}
	rows := make([]string, 0, len(sum.Categories))
	for _, c := range sum.Categories {
		rows = append(rows, fmt.Sprintf("%s  %s  %s  %s",
			valueStyle.Width(nameWidth).Render(c.Category),
			lipgloss.NewStyle().Width(12).Align(lipgloss.Right).Render(c.Amount.FormatCurrency()),
			labelStyle.Width(7).Align(lipgloss.Right).Render(fmt.Sprintf("%.1f%%", c.Percentage)),
			barStyle.Render(bar(c.Percentage))))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		stats,
		labelStyle.Render("By category"),
		strings.Join(rows, "\n"),
	)
}

func stat(label, value, hint string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(label),
		valueStyle.Render(value),
		labelStyle.Render(hint),
	))
}

// bar draws a share of 0..100 as a fixed-width block bar.
func bar(pct float64) string {
	n := int(pct/100*barWidth + 0.5)
	n = min(max(n, 0), barWidth)
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}
