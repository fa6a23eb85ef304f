package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"

	_ "modernc.org/sqlite"
)

const (
	sqliteInsert = `INSERT INTO expenses (id, user_id, amount_cents, category, description, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	sqliteList = `SELECT id, user_id, amount_cents, category, description, date, created_at
FROM expenses WHERE user_id = ? ORDER BY date DESC, created_at DESC`
	sqliteDelete = `DELETE FROM expenses WHERE id = ? AND user_id = ?`
)

// SQLiteRepository stores expenses in a local SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	if _, err := migrateUp(sqliteDialect, dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense implements ExpenseWriter
func (r *SQLiteRepository) CreateExpense(ctx context.Context, userID string, in core.NewExpense) (core.Expense, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, sqliteInsert,
		e.ID, e.UserID, e.Amount.Cents, e.Category, e.Description, e.Date.String(), e.CreatedAt.UnixNano())
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"date", e.Date.String())
	return e, nil
}

// ListExpenses implements ExpenseLister
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, sqliteList, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e         core.Expense
			date      string
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &e.Description, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("scan expense %s: %w", e.ID, err)
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// DeleteExpense implements ExpenseDeleter
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, sqliteDelete, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

var _ RecordStore = (*SQLiteRepository)(nil)
