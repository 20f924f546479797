package http

import (
	"net/http"

	"fintrack/internal/middleware/auth"
)

type addBudgetRequest struct {
	Category string `json:"category"`
	Amount   amount `json:"amount"`
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.deps.Budgets.ProgressFor(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, progress)
}

func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.deps.Budgets.OverviewFor(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, overview)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	var req addBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := s.deps.Ledger.AddBudget(r.Context(), auth.UserIDFromContext(r.Context()), sanitizeInput(req.Category), req.Amount.Decimal())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Budgets.ListBudgets(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, budgets)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.RemoveBudget(r.Context(), auth.UserIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageBody{Message: "Budget deleted successfully"})
}
