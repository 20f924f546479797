package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

var t0 = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func income(id string, cents int64, date time.Time, source string) core.Transaction {
	return core.Transaction{ID: id, Type: core.Income, Amount: core.Money{Cents: cents}, Date: date, Label: source, Category: "Salary"}
}

func expense(id string, cents int64, date time.Time, category string) core.Transaction {
	return core.Transaction{ID: id, Type: core.Expense, Amount: core.Money{Cents: cents}, Date: date, Category: category, Label: category}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func TestTotalOf(t *testing.T) {
	require.Equal(t, int64(0), TotalOf(nil).Cents)
	require.Equal(t, int64(0), TotalOf([]core.Transaction{}).Cents)

	txs := []core.Transaction{
		expense("a", 1999, t0, "Food"),
		expense("b", 1, t0, "Food"),
		expense("c", 10000, t0, "Bills"),
	}
	require.Equal(t, int64(12000), TotalOf(txs).Cents)
}

func TestTotalOfIsExactOverManyTerms(t *testing.T) {
	// summing 0.10 repeatedly drifts in float64 but not in cents.
	txs := make([]core.Transaction, 100_000)
	for i := range txs {
		txs[i] = expense("x", 10, t0, "Food")
	}
	require.Equal(t, int64(1_000_000), TotalOf(txs).Cents)
	require.Equal(t, "10000.00", TotalOf(txs).String())
}

func TestWindowFilter(t *testing.T) {
	txs := []core.Transaction{
		expense("old", 100, t0.AddDate(0, 0, -31), "Food"),
		expense("edge", 100, t0.Add(-30*24*time.Hour), "Food"),
		expense("inside", 100, t0.AddDate(0, 0, -2), "Food"),
		expense("future", 100, t0.AddDate(0, 0, 3), "Food"),
		expense("justout", 100, t0.Add(-30*24*time.Hour-time.Nanosecond), "Food"),
	}

	got := WindowFilter(txs, 30, t0)
	require.Equal(t, []string{"edge", "inside", "future"}, ids(got))
	// input untouched
	require.Equal(t, "old", txs[0].ID)
	require.Len(t, txs, 5)
}

func TestWindowFilterIdempotent(t *testing.T) {
	txs := []core.Transaction{
		income("a", 100, t0.AddDate(0, 0, -70), "Job"),
		income("b", 100, t0.AddDate(0, 0, -45), "Job"),
		income("c", 100, t0.AddDate(0, 0, -10), "Job"),
		income("d", 100, t0, "Job"),
	}
	narrow := WindowFilter(txs, 30, t0)
	require.Equal(t, narrow, WindowFilter(narrow, 30, t0))
	require.Equal(t, narrow, WindowFilter(narrow, 60, t0))
}

func TestWindowFilterEmpty(t *testing.T) {
	got := WindowFilter(nil, 60, t0)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestSortByDateDescendingStable(t *testing.T) {
	txs := []core.Transaction{
		expense("a", 100, t0, "Food"),
		expense("b", 100, t0.Add(time.Hour), "Food"),
		expense("c", 100, t0, "Food"),
		expense("d", 100, t0.Add(-time.Hour), "Food"),
		expense("e", 100, t0, "Food"),
	}
	want := []string{"b", "a", "c", "e", "d"}
	for i := 0; i < 5; i++ {
		require.Equal(t, want, ids(SortByDateDescending(txs)))
	}
	// input order unchanged
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(txs))
}

func TestRecentTransactionsSevenExpensesOneIncome(t *testing.T) {
	today := t0
	var expenses []core.Transaction
	for i := 0; i < 7; i++ {
		expenses = append(expenses, expense(string(rune('a'+i)), 100, today.Add(time.Duration(i)*time.Minute), "Food"))
	}
	incomes := []core.Transaction{income("inc", 5000, today, "Salary")}

	got := RecentTransactions(incomes, expenses, DefaultRecentLimit)
	require.Len(t, got, 6)

	var nIncome, nExpense int
	for i, rt := range got {
		switch rt.Type {
		case core.Income:
			nIncome++
			require.Equal(t, "Salary", rt.Title)
		case core.Expense:
			nExpense++
			require.Equal(t, "Food", rt.Title)
		}
		if i > 0 {
			require.False(t, rt.Date.After(got[i-1].Date), "entry %d out of order", i)
		}
	}
	require.Equal(t, 1, nIncome)
	require.Equal(t, 5, nExpense)
	// the two oldest expenses were cut before the merge
	for _, rt := range got {
		require.NotContains(t, []string{"a", "b"}, rt.ID)
	}
}

func TestRecentTransactionsTwoStageCut(t *testing.T) {
	var incomes, expenses []core.Transaction
	// eight incomes newer than every expense
	for i := 0; i < 8; i++ {
		incomes = append(incomes, income(string(rune('A'+i)), 100, t0.AddDate(0, 0, -i), "Job"))
	}
	for i := 0; i < 8; i++ {
		expenses = append(expenses, expense(string(rune('a'+i)), 100, t0.AddDate(0, 0, -20-i), "Food"))
	}

	got := RecentTransactions(incomes, expenses, DefaultRecentLimit)
	require.Len(t, got, 10)
	var nIncome int
	for _, rt := range got {
		if rt.Type == core.Income {
			nIncome++
		}
	}
	// a global top-10 would hold 8 incomes
	require.Equal(t, RecentPerType, nIncome)
	require.Equal(t, "A", got[0].ID)
	require.Equal(t, "E", got[4].ID)
	require.Equal(t, "a", got[5].ID)
}

func TestRecentTransactionsTitlesAndLimit(t *testing.T) {
	incomes := []core.Transaction{{ID: "i", Amount: core.Money{Cents: 1}, Date: t0}}
	expenses := []core.Transaction{{ID: "e", Amount: core.Money{Cents: 1}, Date: t0.Add(time.Second)}}

	got := RecentTransactions(incomes, expenses, 0)
	require.Len(t, got, 2)
	require.Equal(t, "Expense", got[0].Title)
	require.Equal(t, core.Expense, got[0].Type)
	require.Equal(t, "Income", got[1].Title)
	require.Equal(t, core.Income, got[1].Type)

	require.Len(t, RecentTransactions(incomes, expenses, 1), 1)
	require.Empty(t, RecentTransactions(nil, nil, DefaultRecentLimit))
}

func TestBuildSummary(t *testing.T) {
	incomes := []core.Transaction{
		income("i1", 10000, t0, "Salary"),
		income("i2", 2500, t0.AddDate(0, 0, -61), "Bonus"),
	}
	expenses := []core.Transaction{
		expense("e1", 4000, t0, "Food"),
		expense("e2", 1500, t0.AddDate(0, 0, -40), "Bills"),
	}

	s := BuildSummary(incomes, expenses, t0)
	require.Equal(t, int64(12500), s.TotalIncome.Cents)
	require.Equal(t, int64(5500), s.TotalExpense.Cents)
	require.Equal(t, int64(7000), s.TotalBalance.Cents)
	require.Equal(t, int64(10000), s.Last60DaysIncome.Total.Cents)
	require.Equal(t, []string{"i1"}, ids(s.Last60DaysIncome.Transactions))
	require.Equal(t, int64(4000), s.Last30DaysExpense.Total.Cents)
	require.Equal(t, []string{"e1"}, ids(s.Last30DaysExpense.Transactions))
	require.Len(t, s.RecentTransactions, 4)
}

func TestBuildSummaryBalanceScenario(t *testing.T) {
	s := BuildSummary(
		[]core.Transaction{income("i", 10000, t0, "Salary")},
		[]core.Transaction{expense("e", 4000, t0, "Food")},
		t0,
	)
	require.Equal(t, int64(6000), s.TotalBalance.Cents)
}

func TestBuildSummaryNegativeBalanceAndEmpty(t *testing.T) {
	s := BuildSummary(nil, []core.Transaction{expense("e", 4000, t0, "Food")}, t0)
	require.Equal(t, int64(-4000), s.TotalBalance.Cents)

	empty := BuildSummary(nil, nil, t0)
	require.Zero(t, empty.TotalBalance.Cents)
	require.NotNil(t, empty.Last60DaysIncome.Transactions)
	require.NotNil(t, empty.RecentTransactions)
}
