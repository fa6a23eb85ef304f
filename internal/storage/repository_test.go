package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "expenses.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// exerciseStore runs the shared contract against any RecordStore.
func exerciseStore(t *testing.T, s RecordStore) {
	t.Helper()
	ctx := context.Background()
	owner := "owner-" + time.Now().Format("150405.000000000")

	mk := func(cents int64, cat string, d core.Date) core.Expense {
		t.Helper()
		e, err := s.CreateExpense(ctx, owner, core.NewExpense{Amount: core.Money{Cents: cents}, Category: cat, Description: "d", Date: d})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return e
	}
	a := mk(1050, "Food", core.NewDate(2025, 1, 10))
	b := mk(0, "Gift", core.NewDate(2025, 3, 1))
	c := mk(200, "Bus", core.NewDate(2025, 2, 5))

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	list, err := s.ListExpenses(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	for i, want := range []core.Expense{b, c, a} {
		got := list[i]
		if got.ID != want.ID || got.Amount != want.Amount || got.Category != want.Category || got.Date.String() != want.Date.String() {
			t.Fatalf("position %d: got %+v want %+v", i, got, want)
		}
	}

	if other, _ := s.ListExpenses(ctx, owner+"-other"); len(other) != 0 {
		t.Fatalf("records leaked across owners")
	}
	if err := s.DeleteExpense(ctx, owner+"-other", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteExpense(ctx, owner, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteExpense(ctx, owner, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat delete: expected ErrNotFound, got %v", err)
	}

	_, err = s.CreateExpense(ctx, owner, core.NewExpense{Amount: core.Money{Cents: 1}, Category: "", Date: core.NewDate(2025, 1, 1)})
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestSQLiteRepository(t *testing.T) {
	exerciseStore(t, newTestSQLite(t))
}

func TestSQLiteSameDateOrdersByCreation(t *testing.T) {
	repo := newTestSQLite(t)
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { tick = tick.Add(time.Millisecond); return tick }
	ctx := context.Background()

	var ids []string
	for _, cat := range []string{"A", "B", "C"} {
		e, err := repo.CreateExpense(ctx, "u", core.NewExpense{Amount: core.Money{Cents: 1}, Category: cat, Date: core.NewDate(2025, 5, 5)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, e.ID)
	}
	list, _ := repo.ListExpenses(ctx, "u")
	for i := range ids {
		if list[i].ID != ids[len(ids)-1-i] {
			t.Fatalf("expected newest first at %d", i)
		}
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		repo.Close()
	}
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	repo, err := NewPostgresRepository(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer repo.Close()

	exerciseStore(t, repo)

	if err := repo.DeleteExpense(context.Background(), "u", "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestSQLiteMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo.Close()

	want, err := latestVersion(sqliteDialect)
	if err != nil || want == 0 {
		t.Fatalf("latestVersion = %d, %v", want, err)
	}
	got, err := migrateUp(sqliteDialect, "file:"+path)
	if err != nil {
		t.Fatalf("second migrateUp: %v", err)
	}
	if got != want {
		t.Fatalf("schema version %d, want %d", got, want)
	}
	if pg, err := latestVersion(postgresDialect); err != nil || pg != want {
		t.Fatalf("postgres and sqlite schemas diverged: %d vs %d (%v)", pg, want, err)
	}
}
