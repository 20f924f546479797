package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"fintrack/internal/aggregate"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"
)

const (
	testSecret = "http-test-secret-0123456789"
	userA      = "3b241101-e2bb-4255-8caf-4136c566a962"
	userB      = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db down") }

type testServer struct {
	srv   *Server
	store *memory.Store
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	store := memory.New()
	evaluator := budget.NewEvaluator(store, nil)
	srv := NewServer(":0", Deps{
		Summarizer: aggregate.NewSummarizer(store, nil),
		Budgets:    evaluator,
		Ledger:     services.NewLedgerService(store, evaluator, nil),
		Ready:      store,
		Verifier:   auth.NewVerifier(testSecret),
		Logger:     log.New(log.Config{Level: slog.LevelError, Output: io.Discard}),
	}, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{srv: srv, store: store}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (ts *testServer) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	rr := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := ts.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code, path)
	}

	ts.srv.deps.Ready = failingPinger{}
	rr := ts.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestResponseHeaders(t *testing.T) {
	ts := newTestServer(t, Options{})
	rr := ts.do(t, http.MethodGet, "/api/v1/dashboard", userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	require.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodGet, "/api/v1/dashboard", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "authentication required", decode[errorBody](t, rr).Message)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr = httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, decode[errorBody](t, rr).Message, "invalid auth token")

	rr = ts.do(t, http.MethodGet, "/api/v1/dashboard", "not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/expense/add", "", `{"category":"Food","amount":5}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLedgerEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodPost, "/api/v1/income/add", userA, `{"source":"Salary","amount":"2500.50","date":"2025-05-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	income := decode[core.Transaction](t, rr)
	require.Equal(t, int64(250050), income.Amount.Cents)
	require.Equal(t, defaultIncomeCategory, income.Category)
	require.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), income.Date.UTC())

	rr = ts.do(t, http.MethodPost, "/api/v1/expense/add", userA, `{"category":"Food","amount":12.5,"icon":"🍕"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	expense := decode[core.Transaction](t, rr)

	rr = ts.do(t, http.MethodGet, "/api/v1/expense/get", userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]core.Transaction](t, rr)
	require.Len(t, list, 1)
	require.Equal(t, expense.ID, list[0].ID)

	rr = ts.do(t, http.MethodGet, "/api/v1/income/get", userB, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]\n", rr.Body.String())

	// other users cannot delete, and type must match
	rr = ts.do(t, http.MethodDelete, "/api/v1/expense/"+expense.ID, userB, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	rr = ts.do(t, http.MethodDelete, "/api/v1/income/"+expense.ID, userA, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	rr = ts.do(t, http.MethodDelete, "/api/v1/expense/"+expense.ID, userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Expense deleted successfully", decode[messageBody](t, rr).Message)

	rr = ts.do(t, http.MethodDelete, "/api/v1/income/xyz", userA, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLedgerValidation(t *testing.T) {
	ts := newTestServer(t, Options{})
	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed json", "/api/v1/expense/add", `{"category":`, http.StatusBadRequest},
		{"trailing data", "/api/v1/expense/add", `{"category":"Food","amount":1} {}`, http.StatusBadRequest},
		{"non numeric amount", "/api/v1/expense/add", `{"category":"Food","amount":"abc"}`, http.StatusUnprocessableEntity},
		{"negative amount", "/api/v1/expense/add", `{"category":"Food","amount":-4}`, http.StatusUnprocessableEntity},
		{"missing amount", "/api/v1/income/add", `{"source":"Salary"}`, http.StatusUnprocessableEntity},
		{"missing category", "/api/v1/expense/add", `{"amount":4}`, http.StatusUnprocessableEntity},
		{"missing source", "/api/v1/income/add", `{"amount":4}`, http.StatusUnprocessableEntity},
		{"bad date", "/api/v1/income/add", `{"source":"Salary","amount":4,"date":"01/05/2025"}`, http.StatusUnprocessableEntity},
		{"long expense category", "/api/v1/expense/add", `{"category":"` + strings.Repeat("c", 150) + `","amount":4}`, http.StatusUnprocessableEntity},
		{"long expense title", "/api/v1/expense/add", `{"category":"Food","title":"` + strings.Repeat("t", 250) + `","amount":4}`, http.StatusUnprocessableEntity},
		{"long income source", "/api/v1/income/add", `{"source":"` + strings.Repeat("s", 250) + `","amount":4}`, http.StatusUnprocessableEntity},
		{"long budget category", "/api/v1/budget/add", `{"category":"` + strings.Repeat("c", 150) + `","amount":4}`, http.StatusUnprocessableEntity},
		{"exponent amount", "/api/v1/expense/add", `{"category":"Food","amount":1e3}`, http.StatusUnprocessableEntity},
		{"sub cent amount", "/api/v1/expense/add", `{"category":"Food","amount":"0.004"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, tc.path, userA, tc.body)
			require.Equal(t, tc.want, rr.Code, rr.Body.String())
		})
	}

	txs, err := ts.store.FindTransactions(context.Background(), userA, core.Expense, nil)
	require.NoError(t, err)
	require.Empty(t, txs)
	budgets, err := ts.store.FindBudgets(context.Background(), userA)
	require.NoError(t, err)
	require.Empty(t, budgets)

	rr := ts.do(t, http.MethodPost, "/api/v1/expense/add", userA, `{"category":"`+strings.Repeat("c", 150)+`","amount":4}`)
	require.Equal(t, "category must be at most 100 bytes", decode[errorBody](t, rr).Message)
	rr = ts.do(t, http.MethodPost, "/api/v1/income/add", userA, `{"source":"`+strings.Repeat("s", 250)+`","amount":4}`)
	require.Equal(t, "label must be at most 200 bytes", decode[errorBody](t, rr).Message)
}

func TestAmountsRoundHalfUpToCents(t *testing.T) {
	ts := newTestServer(t, Options{})
	cases := []struct {
		path string
		body string
		want int64
	}{
		{"/api/v1/income/add", `{"source":"Salary","amount":"1.005"}`, 101},
		{"/api/v1/expense/add", `{"category":"Food","amount":0.285}`, 29},
		{"/api/v1/expense/add", `{"category":"Food","amount":"12,34"}`, 1234},
		{"/api/v1/budget/add", `{"category":"Food","amount":"10.075"}`, 1008},
	}
	for _, tc := range cases {
		rr := ts.do(t, http.MethodPost, tc.path, userA, tc.body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var created struct {
			Amount core.Money `json:"amount"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		require.Equal(t, tc.want, created.Amount.Cents, tc.body)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})

	rr := ts.do(t, http.MethodPost, "/api/v1/budget/add", userA, `{"category":"Food","amount":50}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	food := decode[core.Budget](t, rr)

	rr = ts.do(t, http.MethodPost, "/api/v1/budget/add", userA, `{"category":"Food","amount":80}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/budget/add", userA, `{"category":"Bills","amount":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/expense/add", userA, `{"category":"Food","amount":45}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.do(t, http.MethodPost, "/api/v1/expense/add", userA, `{"category":"food","amount":100}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/v1/budget/progress", userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	progress := decode[[]core.BudgetProgress](t, rr)
	require.Len(t, progress, 1)
	require.Equal(t, food.ID, progress[0].BudgetID)
	require.Equal(t, int64(4500), progress[0].Spent.Cents)
	require.Equal(t, 90.0, progress[0].Percent)
	require.Equal(t, core.StatusNearLimit, progress[0].Status)

	rr = ts.do(t, http.MethodGet, "/api/v1/budget/overview", userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	overview := decode[core.BudgetOverview](t, rr)
	require.Equal(t, 1, overview.Categories)
	require.Equal(t, int64(14500), overview.TotalSpent.Cents)

	rr = ts.do(t, http.MethodGet, "/api/v1/budget/get", userB, "")
	require.Equal(t, "[]\n", rr.Body.String())

	rr = ts.do(t, http.MethodDelete, "/api/v1/budget/"+food.ID, userB, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	rr = ts.do(t, http.MethodDelete, "/api/v1/budget/"+food.ID, userA, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/v1/budget/progress", userA, "")
	require.Equal(t, "[]\n", rr.Body.String())
}

func TestDashboardEndpoints(t *testing.T) {
	ts := newTestServer(t, Options{})
	now := time.Now().UTC()

	for _, body := range []string{
		`{"source":"Salary","amount":1000,"date":"` + now.AddDate(0, 0, -10).Format(time.RFC3339) + `"}`,
		`{"source":"Bonus","amount":200,"date":"` + now.AddDate(0, 0, -90).Format(time.RFC3339) + `"}`,
	} {
		rr := ts.do(t, http.MethodPost, "/api/v1/income/add", userA, body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	rr := ts.do(t, http.MethodPost, "/api/v1/expense/add", userA,
		`{"category":"Rent","amount":300,"date":"`+now.AddDate(0, 0, -5).Format(time.RFC3339)+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/v1/dashboard", userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[core.DashboardSummary](t, rr)
	require.Equal(t, int64(120000), summary.TotalIncome.Cents)
	require.Equal(t, int64(30000), summary.TotalExpense.Cents)
	require.Equal(t, int64(90000), summary.TotalBalance.Cents)
	require.Equal(t, int64(100000), summary.Last60DaysIncome.Total.Cents)
	require.Len(t, summary.RecentTransactions, 3)
	require.Equal(t, "Rent", summary.RecentTransactions[0].Title)

	rr = ts.do(t, http.MethodGet, "/api/v1/dashboard/report?days=30", userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[core.Report](t, rr)
	require.Equal(t, 30, report.Days)
	require.Equal(t, int64(100000), report.TotalIncome.Cents)
	require.Equal(t, 2, report.TransactionCount)

	rr = ts.do(t, http.MethodGet, "/api/v1/dashboard/report?category=Rent", userA, "")
	require.Equal(t, http.StatusOK, rr.Code)
	report = decode[core.Report](t, rr)
	require.Equal(t, int64(0), report.TotalIncome.Cents)
	require.Equal(t, int64(30000), report.TotalExpense.Cents)

	rr = ts.do(t, http.MethodGet, "/api/v1/dashboard/report?days=-1", userA, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "days must be a non-negative integer", decode[errorBody](t, rr).Message)
}

func TestMethodAndRouteMismatch(t *testing.T) {
	ts := newTestServer(t, Options{})
	rr := ts.do(t, http.MethodPost, "/api/v1/dashboard", userA, `{}`)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	rr = ts.do(t, http.MethodGet, "/api/v1/unknown", userA, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{RateLimitPerMinute: 2})
	for i := 0; i < 2; i++ {
		rr := ts.do(t, http.MethodGet, "/api/v1/dashboard", userA, "")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := ts.do(t, http.MethodGet, "/api/v1/dashboard", userA, "")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "60", rr.Header().Get("Retry-After"))

	// budgets are per user
	rr = ts.do(t, http.MethodGet, "/api/v1/dashboard", userB, "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{core.ErrNotAuthenticated, http.StatusUnauthorized},
		{core.ErrInvalidIdentifier, http.StatusBadRequest},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{core.ErrDuplicateCategory, http.StatusConflict},
		{core.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("delete budget: %w", core.ErrNotFound), http.StatusNotFound},
		{core.ErrLabelTooLong, http.StatusUnprocessableEntity},
		{fmt.Errorf("save expense: %w", core.ErrCategoryTooLong), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: negative window -1", core.ErrInvalidWindow), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusFor(tc.err)
		require.Equal(t, tc.want, got, tc.err.Error())
	}
}
