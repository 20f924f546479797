package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Store is the slice of the record store the evaluator needs.
type Store interface {
	FindBudgets(ctx context.Context, userID string) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, id string) error
	FindTransactions(ctx context.Context, userID string, t core.TransactionType, from *time.Time) ([]core.Transaction, error)
}

// Evaluator manages budgets and derives their progress on every read.
type Evaluator struct {
	store Store
	now   func() time.Time
}

func NewEvaluator(store Store, now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{store: store, now: now}
}

// AddBudget creates a budget for category. A second budget for the same
// category is rejected with core.ErrDuplicateCategory rather than replacing it.
func (e *Evaluator) AddBudget(ctx context.Context, userID, category string, amount decimal.Decimal) (core.Budget, error) {
	if err := core.ValidateUserID(userID); err != nil {
		return core.Budget{}, err
	}
	money, err := core.MoneyFromDecimal(amount)
	if err != nil {
		return core.Budget{}, err
	}
	candidate := core.Budget{
		ID:        core.NewID(),
		UserID:    userID,
		Category:  category,
		Amount:    money,
		CreatedAt: e.now().UTC(),
	}
	if err := candidate.Validate(); err != nil {
		return core.Budget{}, err
	}

	existing, err := e.store.FindBudgets(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("find budgets: %w", err)
	}
	if _, ok := byCategory(existing, category); ok {
		return core.Budget{}, fmt.Errorf("%w: %q", core.ErrDuplicateCategory, category)
	}

	b, err := e.store.CreateBudget(ctx, candidate)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"user_id", userID,
		"budget_id", b.ID,
		"category", b.Category,
		"amount_cents", b.Amount.Cents)
	return b, nil
}

// RemoveBudget deletes the budget for category.
func (e *Evaluator) RemoveBudget(ctx context.Context, userID, category string) error {
	if err := core.ValidateUserID(userID); err != nil {
		return err
	}
	existing, err := e.store.FindBudgets(ctx, userID)
	if err != nil {
		return fmt.Errorf("find budgets: %w", err)
	}
	b, ok := byCategory(existing, category)
	if !ok {
		return fmt.Errorf("budget %q: %w", category, core.ErrNotFound)
	}
	return e.RemoveBudgetByID(ctx, userID, b.ID)
}

// RemoveBudgetByID deletes a budget owned by userID.
func (e *Evaluator) RemoveBudgetByID(ctx context.Context, userID, id string) error {
	if err := core.ValidateUserID(userID); err != nil {
		return err
	}
	if err := core.ValidateID(id); err != nil {
		return err
	}
	if err := e.store.DeleteBudget(ctx, userID, id); err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Budget deleted", "user_id", userID, "budget_id", id)
	return nil
}

// ListBudgets returns the user's budgets as stored.
func (e *Evaluator) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	if err := core.ValidateUserID(userID); err != nil {
		return nil, err
	}
	budgets, err := e.store.FindBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find budgets: %w", err)
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	return budgets, nil
}

// ProgressFor returns one BudgetProgress per budget of userID.
func (e *Evaluator) ProgressFor(ctx context.Context, userID string) ([]core.BudgetProgress, error) {
	budgets, expenses, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ProgressAll(budgets, expenses), nil
}

// OverviewFor returns the aggregate budget figures of userID.
func (e *Evaluator) OverviewFor(ctx context.Context, userID string) (core.BudgetOverview, error) {
	budgets, expenses, err := e.load(ctx, userID)
	if err != nil {
		return core.BudgetOverview{}, err
	}
	return Overall(budgets, expenses), nil
}

// CategoryProgress evaluates the budget for one category, if any.
func (e *Evaluator) CategoryProgress(ctx context.Context, userID, category string) (core.BudgetProgress, bool, error) {
	budgets, expenses, err := e.load(ctx, userID)
	if err != nil {
		return core.BudgetProgress{}, false, err
	}
	b, ok := byCategory(budgets, category)
	if !ok {
		return core.BudgetProgress{}, false, nil
	}
	return Progress(b, expenses), true, nil
}

func (e *Evaluator) load(ctx context.Context, userID string) ([]core.Budget, []core.Transaction, error) {
	budgets, err := e.ListBudgets(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := e.store.FindTransactions(ctx, userID, core.Expense, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("find expenses: %w", err)
	}
	return budgets, expenses, nil
}

func byCategory(budgets []core.Budget, category string) (core.Budget, bool) {
	for _, b := range budgets {
		if b.Category == category {
			return b, true
		}
	}
	return core.Budget{}, false
}
