package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

// TransactionFinder reads a user's records. A nil from means no lower bound.
type TransactionFinder interface {
	FindTransactions(ctx context.Context, userID string, t core.TransactionType, from *time.Time) ([]core.Transaction, error)
}

// Summarizer loads a snapshot of a user's records and derives the dashboard.
// It holds no state between calls.
type Summarizer struct {
	store TransactionFinder
	now   func() time.Time
}

// NewSummarizer returns a Summarizer reading from store. A nil now uses time.Now.
func NewSummarizer(store TransactionFinder, now func() time.Time) *Summarizer {
	if now == nil {
		now = time.Now
	}
	return &Summarizer{store: store, now: now}
}

// Summarize returns the dashboard for userID.
func (s *Summarizer) Summarize(ctx context.Context, userID string) (core.DashboardSummary, error) {
	if err := core.ValidateUserID(userID); err != nil {
		return core.DashboardSummary{}, err
	}
	incomes, expenses, err := s.load(ctx, userID)
	if err != nil {
		return core.DashboardSummary{}, err
	}

	summary := BuildSummary(incomes, expenses, s.now())
	slog.DebugContext(ctx, "Dashboard summary computed",
		"user_id", userID,
		"incomes", len(incomes),
		"expenses", len(expenses),
		"balance_cents", summary.TotalBalance.Cents)
	return summary, nil
}

// Report returns the analytics view over the trailing days (0 = all time),
// optionally restricted to one category.
func (s *Summarizer) Report(ctx context.Context, userID string, days int, category string) (core.Report, error) {
	if err := core.ValidateUserID(userID); err != nil {
		return core.Report{}, err
	}
	if days < 0 {
		return core.Report{}, fmt.Errorf("%w: negative window %d", core.ErrInvalidWindow, days)
	}
	incomes, expenses, err := s.load(ctx, userID)
	if err != nil {
		return core.Report{}, err
	}
	return BuildReport(incomes, expenses, days, category, s.now()), nil
}

func (s *Summarizer) load(ctx context.Context, userID string) (incomes, expenses []core.Transaction, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = s.store.FindTransactions(gctx, userID, core.Income, nil)
		if err != nil {
			return fmt.Errorf("find incomes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.FindTransactions(gctx, userID, core.Expense, nil)
		if err != nil {
			return fmt.Errorf("find expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return incomes, expenses, nil
}
