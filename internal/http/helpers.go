package http

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

// displayDateLayout is how dates appear in the expense list.
const displayDateLayout = "Jan 2, 2006"

// templateFuncs are available to every page and fragment template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":       func(m core.Money) string { return m.FormatCurrency() },
		"percent":     formatPercent,
		"displayDate": formatDisplayDate,
	}
}

// formatPercent renders a share with one decimal, e.g. "42.9%".
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatDisplayDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(displayDateLayout)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// validationMessage turns a core validation error into text for the form.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Enter a valid amount of zero or more"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrCategoryTooLong):
		return fmt.Sprintf("Category must be at most %d characters", core.MaxCategoryLength)
	case errors.Is(err, core.ErrDescriptionTooLong):
		return fmt.Sprintf("Description must be at most %d characters", core.MaxDescriptionLength)
	case errors.Is(err, core.ErrInvalidDate):
		return "Enter a valid date (YYYY-MM-DD)"
	default:
		return "Invalid data"
	}
}
