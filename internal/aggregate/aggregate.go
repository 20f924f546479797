// Package aggregate derives dashboard figures from raw income and expense
// records: totals, trailing date windows and the recent activity feed.
//
// Every function here is pure. Inputs are never mutated and results are
// recomputed from the records handed in, so callers always see current data.
package aggregate

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

const (
	// RecentPerType caps each side of the feed before the merge.
	RecentPerType = 5
	// DefaultRecentLimit caps the merged feed.
	DefaultRecentLimit = 10

	IncomeWindowDays  = 60
	ExpenseWindowDays = 30

	defaultIncomeTitle  = "Income"
	defaultExpenseTitle = "Expense"
)

// TotalOf sums the amounts of txs. An empty set sums to zero.
func TotalOf(txs []core.Transaction) core.Money {
	var total core.Money
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// WindowFilter keeps records dated at or after now minus days*24h.
// The lower bound is inclusive and there is no upper bound, so future-dated
// records are kept. Input order is preserved.
func WindowFilter(txs []core.Transaction, days int, now time.Time) []core.Transaction {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(cutoff) {
			out = append(out, tx)
		}
	}
	return out
}

// SortByDateDescending returns a copy of txs ordered newest first.
// Records with equal dates keep their relative order.
func SortByDateDescending(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// RecentTransactions builds the activity feed. Each side is sorted and cut to
// RecentPerType first, then the two are merged, re-sorted and cut to limit.
// The two-stage cut is observable: a sixth-newest income never appears even
// when it is newer than every expense shown.
func RecentTransactions(incomes, expenses []core.Transaction, limit int) []core.RecentTransaction {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	latestIncomes := head(SortByDateDescending(incomes), RecentPerType)
	latestExpenses := head(SortByDateDescending(expenses), RecentPerType)

	merged := make([]core.RecentTransaction, 0, len(latestIncomes)+len(latestExpenses))
	for _, tx := range latestIncomes {
		tx.Type = core.Income
		merged = append(merged, core.RecentTransaction{Transaction: tx, Title: titleOr(tx.Label, defaultIncomeTitle)})
	}
	for _, tx := range latestExpenses {
		tx.Type = core.Expense
		merged = append(merged, core.RecentTransaction{Transaction: tx, Title: titleOr(tx.Category, defaultExpenseTitle)})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// BuildSummary computes the dashboard from the full income and expense sets.
// Totals cover all records; the window figures use the trailing 60 days for
// income and 30 days for expenses.
func BuildSummary(incomes, expenses []core.Transaction, now time.Time) core.DashboardSummary {
	totalIncome := TotalOf(incomes)
	totalExpense := TotalOf(expenses)

	incomeWindow := SortByDateDescending(WindowFilter(incomes, IncomeWindowDays, now))
	expenseWindow := SortByDateDescending(WindowFilter(expenses, ExpenseWindowDays, now))

	return core.DashboardSummary{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		TotalBalance: totalIncome.Sub(totalExpense),
		Last60DaysIncome: core.WindowTotal{
			Total:        TotalOf(incomeWindow),
			Transactions: incomeWindow,
		},
		Last30DaysExpense: core.WindowTotal{
			Total:        TotalOf(expenseWindow),
			Transactions: expenseWindow,
		},
		RecentTransactions: RecentTransactions(incomes, expenses, DefaultRecentLimit),
		GeneratedAt:        now,
	}
}

func head(txs []core.Transaction, n int) []core.Transaction {
	if len(txs) > n {
		return txs[:n]
	}
	return txs
}

func titleOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
