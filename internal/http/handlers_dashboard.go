package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/middleware/auth"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Summarizer.Summarize(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// handleReport serves the analytics view. days=0 or absent means all time.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days := 0
	if v := strings.TrimSpace(q.Get("days")); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			writeError(w, r, fmt.Errorf("%w: days=%q", core.ErrInvalidWindow, v))
			return
		}
		days = d
	}
	category := sanitizeInput(q.Get("category"))

	report, err := s.deps.Summarizer.Report(r.Context(), auth.UserIDFromContext(r.Context()), days, category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
