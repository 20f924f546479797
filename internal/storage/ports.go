package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Ports implemented by every record store backend.
type (
	TransactionStore interface {
		// FindTransactions returns the user's records of type t, newest first.
		// A non-nil from keeps only records dated at or after it.
		FindTransactions(ctx context.Context, userID string, t core.TransactionType, from *time.Time) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// DeleteTransaction removes a record owned by userID or returns core.ErrNotFound.
		DeleteTransaction(ctx context.Context, userID string, t core.TransactionType, id string) error
	}

	BudgetStore interface {
		// FindBudgets returns the user's budgets, newest first.
		FindBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		// CreateBudget returns core.ErrDuplicateCategory when the category is taken.
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, userID, id string) error
	}

	Store interface {
		TransactionStore
		BudgetStore
		Ping(ctx context.Context) error
		Close() error
	}
)
