// Package budget evaluates per-category spending limits against expenses.
package budget

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	nearLimitPercent  = 80.0
	overBudgetPercent = 100.0
)

var hundred = decimal.NewFromInt(100)

// SpentFor sums expenses whose category equals category exactly.
// Matching is case-sensitive with no trimming.
func SpentFor(category string, expenses []core.Transaction) core.Money {
	var spent core.Money
	for _, e := range expenses {
		if e.Category == category {
			spent = spent.Add(e.Amount)
		}
	}
	return spent
}

// Percent returns spent/limit*100, or 0 when limit is not positive.
func Percent(spent, limit core.Money) float64 {
	if limit.Cents <= 0 {
		return 0
	}
	return spent.Decimal().Mul(hundred).Div(limit.Decimal()).InexactFloat64()
}

// Classify maps a percentage to a status. Lower thresholds are inclusive.
func Classify(percent float64) core.BudgetStatus {
	switch {
	case percent >= overBudgetPercent:
		return core.StatusOverBudget
	case percent >= nearLimitPercent:
		return core.StatusNearLimit
	default:
		return core.StatusOnTrack
	}
}

// Progress evaluates one budget against the user's expenses.
func Progress(b core.Budget, expenses []core.Transaction) core.BudgetProgress {
	spent := SpentFor(b.Category, expenses)
	percent := Percent(spent, b.Amount)
	return core.BudgetProgress{
		BudgetID: b.ID,
		Category: b.Category,
		Spent:    spent,
		Limit:    b.Amount,
		Percent:  percent,
		Status:   Classify(percent),
	}
}

// ProgressAll evaluates every budget, preserving budget order.
func ProgressAll(budgets []core.Budget, expenses []core.Transaction) []core.BudgetProgress {
	out := make([]core.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, Progress(b, expenses))
	}
	return out
}

// Overall totals every budget and every expense, budgeted or not.
func Overall(budgets []core.Budget, expenses []core.Transaction) core.BudgetOverview {
	var total, spent core.Money
	for _, b := range budgets {
		total = total.Add(b.Amount)
	}
	for _, e := range expenses {
		spent = spent.Add(e.Amount)
	}
	return core.BudgetOverview{
		Categories:  len(budgets),
		TotalBudget: total,
		TotalSpent:  spent,
		Remaining:   total.Sub(spent),
		Percent:     Percent(spent, total),
	}
}
