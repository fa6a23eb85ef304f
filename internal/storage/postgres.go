package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

const (
	pgInsert = `INSERT INTO expenses (id, user_id, amount_cents, category, description, date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	pgList = `SELECT id, user_id, amount_cents, category, description, date, created_at
FROM expenses WHERE user_id = $1 ORDER BY date DESC, created_at DESC`
	pgDelete = `DELETE FROM expenses WHERE id = $1 AND user_id = $2`
)

// PostgresRepository stores expenses in a hosted Postgres database.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	if _, err := migrateUp(postgresDialect, dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense implements ExpenseWriter
func (r *PostgresRepository) CreateExpense(ctx context.Context, userID string, in core.NewExpense) (core.Expense, error) {
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
	}
	err := r.db.QueryRowContext(ctx, pgInsert,
		e.ID, e.UserID, e.Amount.Cents, e.Category, e.Description, e.Date.Time).Scan(&e.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", describePQ(err))
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// ListExpenses implements ExpenseLister
func (r *PostgresRepository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, pgList, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", describePQ(err))
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e    core.Expense
			date time.Time
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Category, &e.Description, &date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = core.DateOf(date)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// DeleteExpense implements ExpenseDeleter
func (r *PostgresRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		// Postgres would reject the cast; to callers it is simply not there.
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	res, err := r.db.ExecContext(ctx, pgDelete, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", describePQ(err))
	}
	return checkAffected(res, id)
}

// describePQ adds the Postgres error code to driver errors.
func describePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (%s): %w", pqErr.Code.Name(), pqErr.Code, err)
	}
	return err
}

var _ RecordStore = (*PostgresRepository)(nil)
