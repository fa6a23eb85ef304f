package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/amqp"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/analytics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/metrics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/session"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/storage"
)

// AllCategories is the filter value that disables category filtering.
const AllCategories = "all"

const storeTimeout = 7 * time.Second

// Publisher sends expense events downstream.
type Publisher interface {
	PublishEvent(ctx context.Context, ev *amqp.ExpenseEvent) error
	Close() error
}

// ListResult is one page of history.
type ListResult struct {
	Expenses   []core.Expense
	Categories []string // distinct categories of the unfiltered list, first-seen order
	Selected   string
}

// ExpenseService orchestrates the record store, event publishing and the
// analytics memo. The caller's session is passed to every operation.
type ExpenseService struct {
	store     storage.RecordStore
	publisher Publisher
	memo      *analytics.Memo
	metrics   *metrics.Metrics
	logger    *applog.Logger
}

type Option func(*ExpenseService)

// WithPublisher enables event publishing after mutations.
func WithPublisher(p Publisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ExpenseService) { s.metrics = m }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseService) { s.logger = l.WithComponent(applog.ComponentExpense) }
}

func NewExpenseService(store storage.RecordStore, memo *analytics.Memo, opts ...Option) *ExpenseService {
	s := &ExpenseService{store: store, memo: memo, logger: applog.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	if s.memo == nil {
		s.memo = analytics.NewMemo(128, 5*time.Minute)
	}
	return s
}

func (s *ExpenseService) list(ctx context.Context, sess session.Session) ([]core.Expense, error) {
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	items, err := s.store.ListExpenses(cctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list expenses (user=%s): %w", sess.UserID, err)
	}
	return items, nil
}

// List returns the user's history, optionally narrowed to one category.
func (s *ExpenseService) List(ctx context.Context, sess session.Session, category string) (ListResult, error) {
	items, err := s.list(ctx, sess)
	if err != nil {
		return ListResult{}, err
	}
	selected := strings.TrimSpace(category)
	if selected == "" {
		selected = AllCategories
	}
	return ListResult{
		Expenses:   FilterByCategory(items, selected),
		Categories: DistinctCategories(items),
		Selected:   selected,
	}, nil
}

// Summary aggregates the user's full history as of today.
func (s *ExpenseService) Summary(ctx context.Context, sess session.Session, today core.Date) (analytics.Summary, bool, error) {
	items, err := s.list(ctx, sess)
	if err != nil {
		return analytics.Summary{}, false, err
	}
	sum, ok := s.memo.Summary(items, today)
	return sum, ok, nil
}

// Create validates and stores a new expense, then publishes an event.
func (s *ExpenseService) Create(ctx context.Context, sess session.Session, in core.NewExpense) (core.Expense, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	e, err := s.store.CreateExpense(cctx, sess.UserID, in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.metrics.ExpenseCreated()
	s.logger.ExpenseCreated(ctx, sess.UserID, e.ID, e.Amount.Cents, e.Category, e.Date.String())

	s.publish(ctx, amqp.NewCreatedEvent(e))
	return e, nil
}

// Delete removes one of the user's expenses, then publishes an event.
func (s *ExpenseService) Delete(ctx context.Context, sess session.Session, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: empty id", storage.ErrNotFound)
	}
	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.store.DeleteExpense(cctx, sess.UserID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.metrics.ExpenseDeleted()
	s.logger.ExpenseDeleted(ctx, sess.UserID, id)

	s.publish(ctx, amqp.NewDeletedEvent(sess.UserID, id))
	return nil
}

// publish is best effort: the record is already stored.
func (s *ExpenseService) publish(ctx context.Context, ev *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		s.metrics.PublishFailed()
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			applog.FieldEventType, ev.Type,
			applog.FieldExpenseID, ev.ID,
			applog.FieldError, err.Error())
	}
}

// SuggestCategories ranks the user's existing categories against query:
// prefix matches first, then by edit distance.
func (s *ExpenseService) SuggestCategories(ctx context.Context, sess session.Session, query string, limit int) ([]string, error) {
	items, err := s.list(ctx, sess)
	if err != nil {
		return nil, err
	}
	return RankCategories(DistinctCategories(items), query, limit), nil
}

// Ready checks the record store.
func (s *ExpenseService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes both the store and the publisher.
func (s *ExpenseService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

// FilterByCategory keeps records whose category equals selected exactly.
// An empty selection or AllCategories returns the input unchanged.
func FilterByCategory(items []core.Expense, selected string) []core.Expense {
	if selected == "" || selected == AllCategories {
		return items
	}
	out := make([]core.Expense, 0, len(items))
	for _, e := range items {
		if e.Category == selected {
			out = append(out, e)
		}
	}
	return out
}

// DistinctCategories lists categories in first-seen order.
func DistinctCategories(items []core.Expense) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, e := range items {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}

// RankCategories orders candidates by closeness to query. An empty query
// keeps the input order.
func RankCategories(candidates []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := append([]string(nil), candidates...)
	if q != "" {
		type scored struct {
			name   string
			prefix bool
			dist   int
		}
		rows := make([]scored, len(out))
		for i, c := range out {
			lc := strings.ToLower(c)
			rows[i] = scored{name: c, prefix: strings.HasPrefix(lc, q), dist: levenshtein.ComputeDistance(q, lc)}
		}
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].prefix != rows[b].prefix {
				return rows[a].prefix
			}
			return rows[a].dist < rows[b].dist
		})
		for i := range rows {
			out[i] = rows[i].name
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
