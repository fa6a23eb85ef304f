package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxCategoryLength    = 50
	MaxDescriptionLength = 200

	// DateLayout is the wire format for dates in forms and storage.
	DateLayout = "2006-01-02"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a stored record. ID and UserID are assigned by the store.
	Expense struct {
		ID          string
		UserID      string
		Amount      Money
		Category    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}

	// NewExpense is the payload submitted for insertion.
	NewExpense struct {
		Amount      Money
		Category    string
		Description string
		Date        Date
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = fmt.Errorf("category too long (max %d characters)", MaxCategoryLength)
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidDate        = errors.New("invalid date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns the date n calendar days away.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// OnOrAfter reports whether d falls on or after other, comparing calendar days only.
func (d Date) OnOrAfter(other Date) bool {
	return !DateOf(d.Time).Before(DateOf(other.Time).Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize trims free-form text fields.
func (n NewExpense) Normalize() NewExpense {
	n.Category = strings.TrimSpace(n.Category)
	n.Description = strings.TrimSpace(n.Description)
	return n
}

func (n NewExpense) Validate() error {
	if err := n.Amount.Validate(); err != nil {
		return err
	}
	category := strings.TrimSpace(n.Category)
	if category == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if utf8.RuneCountInString(n.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return n.Date.Validate()
}

// IsValidationError reports whether err stems from user input.
func IsValidationError(err error) bool {
	for _, target := range []error{ErrInvalidAmount, ErrEmptyCategory, ErrCategoryTooLong, ErrDescriptionTooLong, ErrInvalidDate} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
