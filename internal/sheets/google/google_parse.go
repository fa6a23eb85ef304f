package google

import (
	"fmt"
	"strings"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

// Mirror layout: one row per expense, id in column A.
func headerRow() []any {
	return []any{"ID", "User", "Date", "Category", "Description", "Amount"}
}

func expenseRow(e core.Expense) []any {
	return []any{e.ID, e.UserID, e.Date.String(), e.Category, e.Description, e.Amount.String()}
}

func firstColumn(values [][]any) []string {
	out := make([]string, len(values))
	for i, row := range values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out
}

// rowIndexOf returns the zero-based row holding id, or -1.
func rowIndexOf(ids []string, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
