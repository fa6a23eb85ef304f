package worker

import (
	"context"
	"fmt"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/amqp"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/metrics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/sheets"
)

// MirrorWorker replays expense events into a ledger mirror.
type MirrorWorker struct {
	mirror  sheets.LedgerMirror
	metrics *metrics.Metrics
	logger  *applog.Logger
}

func NewMirrorWorker(mirror sheets.LedgerMirror, m *metrics.Metrics, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &MirrorWorker{
		mirror:  mirror,
		metrics: m,
		logger:  logger.WithComponent(applog.ComponentWorker),
	}
}

// Handle processes a single event. It satisfies amqp.Handler.
func (w *MirrorWorker) Handle(ctx context.Context, ev *amqp.ExpenseEvent) error {
	err := w.dispatch(ctx, ev)
	w.metrics.MirrorEvent(string(ev.Type), err)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror expense event",
			applog.FieldEventType, ev.Type,
			applog.FieldExpenseID, ev.ID,
			applog.FieldUserID, ev.UserID,
			"error", err)
		return err
	}
	w.logger.InfoContext(ctx, "Mirrored expense event",
		applog.FieldEventType, ev.Type,
		applog.FieldExpenseID, ev.ID,
		applog.FieldUserID, ev.UserID)
	return nil
}

func (w *MirrorWorker) dispatch(ctx context.Context, ev *amqp.ExpenseEvent) error {
	switch ev.Type {
	case amqp.EventCreated:
		e, err := ev.Expense()
		if err != nil {
			return fmt.Errorf("decode created event: %w", err)
		}
		if err := w.mirror.AppendExpense(ctx, e); err != nil {
			return fmt.Errorf("append to mirror: %w", err)
		}
	case amqp.EventDeleted:
		if err := w.mirror.DeleteExpense(ctx, ev.ID); err != nil {
			return fmt.Errorf("delete from mirror: %w", err)
		}
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}
