package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/services"
)

// defaultIncomeCategory is assigned to incomes created without a category.
const defaultIncomeCategory = "Other"

type addIncomeRequest struct {
	Source   string `json:"source"`
	Category string `json:"category"`
	Amount   amount `json:"amount"`
	Date     date   `json:"date"`
	Icon     string `json:"icon"`
}

type addExpenseRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Amount   amount `json:"amount"`
	Date     date   `json:"date"`
	Icon     string `json:"icon"`
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	var req addIncomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category := sanitizeInput(req.Category)
	if category == "" {
		category = defaultIncomeCategory
	}
	s.addTransaction(w, r, core.Income, services.NewTransaction{
		Label:    sanitizeInput(req.Source),
		Category: category,
		Amount:   req.Amount.Decimal(),
		Date:     req.Date.Time(),
		Icon:     sanitizeInput(req.Icon),
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	var req addExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.addTransaction(w, r, core.Expense, services.NewTransaction{
		Label:    sanitizeInput(req.Title),
		Category: sanitizeInput(req.Category),
		Amount:   req.Amount.Decimal(),
		Date:     req.Date.Time(),
		Icon:     sanitizeInput(req.Icon),
	})
}

func (s *Server) addTransaction(w http.ResponseWriter, r *http.Request, t core.TransactionType, in services.NewTransaction) {
	tx, err := s.deps.Ledger.AddTransaction(r.Context(), auth.UserIDFromContext(r.Context()), t, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, tx)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	s.listTransactions(w, r, core.Income)
}

func (s *Server) handleListExpense(w http.ResponseWriter, r *http.Request) {
	s.listTransactions(w, r, core.Expense)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request, t core.TransactionType) {
	txs, err := s.deps.Ledger.ListTransactions(r.Context(), auth.UserIDFromContext(r.Context()), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, r, http.StatusOK, txs)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.deleteTransaction(w, r, core.Income, "Income deleted successfully")
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteTransaction(w, r, core.Expense, "Expense deleted successfully")
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, t core.TransactionType, msg string) {
	err := s.deps.Ledger.DeleteTransaction(r.Context(), auth.UserIDFromContext(r.Context()), t, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageBody{Message: msg})
}
