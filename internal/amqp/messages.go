package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

// EventType names what happened to an expense.
type EventType string

const (
	EventCreated EventType = "expense.created"
	EventDeleted EventType = "expense.deleted"
)

// ExpenseEvent is published after every successful mutation. Created events
// carry the full record so consumers never need to read the store.
type ExpenseEvent struct {
	Type        EventType `json:"type"`
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewCreatedEvent describes a freshly stored expense.
func NewCreatedEvent(e core.Expense) *ExpenseEvent {
	return &ExpenseEvent{
		Type:        EventCreated,
		ID:          e.ID,
		UserID:      e.UserID,
		AmountCents: e.Amount.Cents,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.String(),
		Timestamp:   time.Now().UTC(),
	}
}

// NewDeletedEvent describes a removed expense.
func NewDeletedEvent(userID, id string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      EventDeleted,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// Validate checks the fields consumers rely on.
func (m *ExpenseEvent) Validate() error {
	if m.ID == "" || m.UserID == "" {
		return errors.New("event is missing id or user_id")
	}
	switch m.Type {
	case EventCreated:
		if _, err := core.ParseDate(m.Date); err != nil {
			return fmt.Errorf("created event: %w", err)
		}
	case EventDeleted:
	default:
		return fmt.Errorf("unknown event type %q", m.Type)
	}
	return nil
}

// Expense rebuilds the record carried by a created event.
func (m *ExpenseEvent) Expense() (core.Expense, error) {
	d, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          m.ID,
		UserID:      m.UserID,
		Amount:      core.Money{Cents: m.AmountCents},
		Category:    m.Category,
		Description: m.Description,
		Date:        d,
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes and validates a message body.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
