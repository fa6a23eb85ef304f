package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/storage"
)

// Store keeps expenses in process memory. It is meant for development and tests.
type Store struct {
	mu    sync.Mutex
	items map[string][]core.Expense // by user id
	now   func() time.Time
}

func New() *Store {
	return &Store{items: make(map[string][]core.Expense), now: time.Now}
}

// seedRecord is one line item of a JSON seed file.
type seedRecord struct {
	UserID      string `json:"user_id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// NewFromFile loads a JSON array of seed records. A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var records []seedRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, r := range records {
		amount, err := core.ParseAmount(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		date, err := core.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		in := core.NewExpense{Amount: amount, Category: r.Category, Description: r.Description, Date: date}
		if _, err := s.CreateExpense(context.Background(), r.UserID, in); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
	}
	return s, nil
}

// CreateExpense implements storage.ExpenseWriter
func (s *Store) CreateExpense(_ context.Context, userID string, in core.NewExpense) (core.Expense, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := core.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   s.now().UTC(),
	}
	s.items[userID] = append(s.items[userID], e)
	return e, nil
}

// ListExpenses implements storage.ExpenseLister
func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	out := append([]core.Expense(nil), s.items[userID]...)
	s.mu.Unlock()

	// Insertion order breaks created_at ties, newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date.Time) {
			return out[a].Date.After(out[b].Date.Time)
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

// DeleteExpense implements storage.ExpenseDeleter
func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[userID]
	for i, e := range items {
		if e.ID == id {
			s.items[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

var _ storage.RecordStore = (*Store)(nil)
