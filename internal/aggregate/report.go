package aggregate

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

// CategoryBreakdown totals txs per category, largest first.
// Ties are ordered by name so output is deterministic.
func CategoryBreakdown(txs []core.Transaction) []core.CategoryAmount {
	totals := make(map[string]core.Money)
	for _, tx := range txs {
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthlyTrend buckets incomes and expenses by UTC calendar month,
// oldest month first.
func MonthlyTrend(incomes, expenses []core.Transaction) []core.MonthTotals {
	type key struct{ year, month int }
	buckets := make(map[key]*core.MonthTotals)
	bucket := func(d time.Time) *core.MonthTotals {
		d = d.UTC()
		k := key{d.Year(), int(d.Month())}
		m, ok := buckets[k]
		if !ok {
			m = &core.MonthTotals{Year: k.year, Month: k.month}
			buckets[k] = m
		}
		return m
	}
	for _, tx := range incomes {
		m := bucket(tx.Date)
		m.Income = m.Income.Add(tx.Amount)
	}
	for _, tx := range expenses {
		m := bucket(tx.Date)
		m.Expense = m.Expense.Add(tx.Amount)
	}

	out := make([]core.MonthTotals, 0, len(buckets))
	for _, m := range buckets {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// FilterCategory keeps records whose category equals category exactly.
// An empty category keeps everything.
func FilterCategory(txs []core.Transaction, category string) []core.Transaction {
	if category == "" {
		return txs
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Category == category {
			out = append(out, tx)
		}
	}
	return out
}

// BuildReport windows both sets to the trailing days (0 = all time), applies
// the optional category filter and derives the analytics view.
func BuildReport(incomes, expenses []core.Transaction, days int, category string, now time.Time) core.Report {
	if days > 0 {
		incomes = WindowFilter(incomes, days, now)
		expenses = WindowFilter(expenses, days, now)
	}
	incomes = FilterCategory(incomes, category)
	expenses = FilterCategory(expenses, category)

	totalIncome := TotalOf(incomes)
	totalExpense := TotalOf(expenses)
	return core.Report{
		Days:              days,
		Category:          category,
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		Balance:           totalIncome.Sub(totalExpense),
		TransactionCount:  len(incomes) + len(expenses),
		Monthly:           MonthlyTrend(incomes, expenses),
		IncomeByCategory:  CategoryBreakdown(incomes),
		ExpenseByCategory: CategoryBreakdown(expenses),
	}
}
