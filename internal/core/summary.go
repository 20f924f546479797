package core

import "time"

// WindowTotal is the sum and the records of a trailing date window.
type WindowTotal struct {
	Total        Money         `json:"total"`
	Transactions []Transaction `json:"transactions"`
}

// RecentTransaction is a feed entry tagged with a display title.
type RecentTransaction struct {
	Transaction
	Title string `json:"title"`
}

// DashboardSummary is derived on every read and never persisted.
type DashboardSummary struct {
	TotalIncome        Money               `json:"totalIncome"`
	TotalExpense       Money               `json:"totalExpense"`
	TotalBalance       Money               `json:"totalBalance"`
	Last60DaysIncome   WindowTotal         `json:"last60DaysIncome"`
	Last30DaysExpense  WindowTotal         `json:"last30DaysExpense"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`
	GeneratedAt        time.Time           `json:"generatedAt"`
}

// BudgetProgress is spend versus limit for one budgeted category.
type BudgetProgress struct {
	BudgetID string       `json:"budgetId"`
	Category string       `json:"category"`
	Spent    Money        `json:"spent"`
	Limit    Money        `json:"limit"`
	Percent  float64      `json:"percent"`
	Status   BudgetStatus `json:"status"`
}

// BudgetOverview backs the budget page summary cards.
type BudgetOverview struct {
	Categories  int     `json:"categories"`
	TotalBudget Money   `json:"totalBudget"`
	TotalSpent  Money   `json:"totalSpent"`
	Remaining   Money   `json:"remaining"`
	Percent     float64 `json:"percent"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// MonthTotals holds income and expense totals for one calendar month.
type MonthTotals struct {
	Year    int   `json:"year"`
	Month   int   `json:"month"` // 1-12
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
}

// Report is the filtered analytics view over a user's records.
type Report struct {
	Days              int              `json:"days"`
	Category          string           `json:"category,omitempty"`
	TotalIncome       Money            `json:"totalIncome"`
	TotalExpense      Money            `json:"totalExpense"`
	Balance           Money            `json:"balance"`
	TransactionCount  int              `json:"transactionCount"`
	Monthly           []MonthTotals    `json:"monthly"`
	IncomeByCategory  []CategoryAmount `json:"incomeByCategory"`
	ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
}
