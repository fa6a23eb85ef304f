package storage

import (
	"context"
	"errors"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

// ErrNotFound is returned when a record does not exist or belongs to another user.
var ErrNotFound = errors.New("expense not found")

// Ports for record store adapters. Every call is scoped to the owning user.
type (
	ExpenseWriter interface {
		CreateExpense(ctx context.Context, userID string, e core.NewExpense) (core.Expense, error)
	}

	// ExpenseLister returns a user's expenses, newest date first; records on the
	// same date are ordered by creation time, newest first.
	ExpenseLister interface {
		ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	}

	ExpenseDeleter interface {
		DeleteExpense(ctx context.Context, userID, id string) error
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}

	// RecordStore is the full set of operations the application needs.
	RecordStore interface {
		ExpenseWriter
		ExpenseLister
		ExpenseDeleter
		Pinger
		Close() error
	}
)
