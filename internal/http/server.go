package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/budget"
	"fintrack/internal/log"
	"fintrack/internal/middleware/auth"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

const apiPrefix = "/api/v1"

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the API handlers call into.
type Deps struct {
	Summarizer *aggregate.Summarizer
	Budgets    *budget.Evaluator
	Ledger     *services.LedgerService
	Ready      Pinger
	Verifier   *auth.Verifier
	Logger     *log.Logger
}

// Options tune the middleware chain.
type Options struct {
	RequestTimeout     time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	deps        Deps
	detector    *security.Detector
	rateLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	s := &Server{
		deps:     deps,
		detector: security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}

	api := http.NewServeMux()
	api.HandleFunc("GET "+apiPrefix+"/dashboard", s.handleDashboard)
	api.HandleFunc("GET "+apiPrefix+"/dashboard/report", s.handleReport)

	api.HandleFunc("GET "+apiPrefix+"/budget/progress", s.handleBudgetProgress)
	api.HandleFunc("GET "+apiPrefix+"/budget/overview", s.handleBudgetOverview)
	api.HandleFunc("POST "+apiPrefix+"/budget/add", s.handleAddBudget)
	api.HandleFunc("GET "+apiPrefix+"/budget/get", s.handleListBudgets)
	api.HandleFunc("DELETE "+apiPrefix+"/budget/{id}", s.handleDeleteBudget)

	api.HandleFunc("POST "+apiPrefix+"/income/add", s.handleAddIncome)
	api.HandleFunc("GET "+apiPrefix+"/income/get", s.handleListIncome)
	api.HandleFunc("DELETE "+apiPrefix+"/income/{id}", s.handleDeleteIncome)

	api.HandleFunc("POST "+apiPrefix+"/expense/add", s.handleAddExpense)
	api.HandleFunc("GET "+apiPrefix+"/expense/get", s.handleListExpense)
	api.HandleFunc("DELETE "+apiPrefix+"/expense/{id}", s.handleDeleteExpense)

	var apiHandler http.Handler = api
	apiHandler = http.TimeoutHandler(apiHandler, opts.RequestTimeout, `{"message":"request timed out"}`)
	apiHandler = s.rateLimiter.Middleware(s.rateLimitKey, s.handleRateLimited)(apiHandler)
	if deps.Verifier != nil {
		apiHandler = deps.Verifier.Middleware(apiHandler)
	}
	apiHandler = s.withSuspiciousRequestLogging(apiHandler)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", handleHealth)
	root.HandleFunc("GET /readyz", s.handleReady)
	root.Handle(apiPrefix+"/", apiHandler)

	var handler http.Handler = root
	handler = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// rateLimitKey buckets authenticated callers by user and everyone else by IP.
func (s *Server) rateLimitKey(r *http.Request) string {
	if uid := auth.UserIDFromContext(r.Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, errorBody{Message: "rate limit exceeded, please try again later"})
}

func (s *Server) withSuspiciousRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
