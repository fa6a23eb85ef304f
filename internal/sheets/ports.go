package sheets

import (
	"context"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

// Ports for ledger mirror adapters.
type (
	// LedgerWriter appends a record to the mirror. Appending an id that is
	// already mirrored is a no-op.
	LedgerWriter interface {
		AppendExpense(ctx context.Context, e core.Expense) error
	}

	// LedgerDeleter removes a mirrored record. A missing id is not an error.
	LedgerDeleter interface {
		DeleteExpense(ctx context.Context, id string) error
	}

	LedgerMirror interface {
		LedgerWriter
		LedgerDeleter
	}
)
