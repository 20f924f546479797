package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	StatusOnTrack    BudgetStatus = "on_track"
	StatusNearLimit  BudgetStatus = "near_limit"
	StatusOverBudget BudgetStatus = "over_budget"
)

type (
	TransactionType string

	BudgetStatus string

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record owned by one user.
	// Label holds the income source or the expense title.
	Transaction struct {
		ID        string          `json:"id"`
		UserID    string          `json:"userId"`
		Type      TransactionType `json:"type"`
		Amount    Money           `json:"amount"`
		Date      time.Time       `json:"date"`
		Category  string          `json:"category"`
		Label     string          `json:"label"`
		Icon      string          `json:"icon,omitempty"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	// Budget is a spending limit for one category. At most one per (UserID, Category).
	Budget struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		Category  string    `json:"category"`
		Amount    Money     `json:"amount"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrDuplicateCategory = errors.New("duplicate budget category")
	ErrNotFound          = errors.New("not found")

	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyLabel      = errors.New("empty label")
	ErrLabelTooLong    = errors.New("label too long")
	ErrCategoryTooLong = errors.New("category too long")
	ErrInvalidWindow   = errors.New("invalid window")
)

// Length limits in bytes.
const (
	MaxLabelLen    = 200
	MaxCategoryLen = 100
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType maps a path or query value to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// ValidateUserID reports ErrNotAuthenticated for a missing identity and
// ErrInvalidIdentifier when the value is not a well-formed record key.
func ValidateUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotAuthenticated
	}
	return ValidateID(id)
}

// ValidateID checks that id is a well-formed record key (a UUID).
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidIdentifier
	}
	return nil
}

// NewID returns a fresh record key.
func NewID() string {
	return uuid.NewString()
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := ValidateUserID(t.UserID); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	switch t.Type {
	case Income:
		if strings.TrimSpace(t.Label) == "" {
			return ErrEmptyLabel
		}
	case Expense:
		if strings.TrimSpace(t.Category) == "" {
			return ErrEmptyCategory
		}
	}
	if len(t.Label) > MaxLabelLen {
		return ErrLabelTooLong
	}
	if len(t.Category) > MaxCategoryLen {
		return ErrCategoryTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if err := ValidateUserID(b.UserID); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if len(b.Category) > MaxCategoryLen {
		return ErrCategoryTooLong
	}
	return b.Amount.Validate()
}
