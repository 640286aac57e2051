package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tripledger/internal/cache"
	"tripledger/internal/core"
	"tripledger/internal/ledger"
	"tripledger/internal/log"
	"tripledger/internal/middleware/ratelimit"
	"tripledger/internal/middleware/security"
	"tripledger/internal/middleware/trace"
	"tripledger/internal/trips"
)

// Ledger is the service surface the API handlers need.
type Ledger interface {
	CreateTrip(ctx context.Context, t core.Trip) (string, error)
	AddMember(ctx context.Context, tripID string, m core.Member) (string, error)
	CreateExpense(ctx context.Context, e core.Expense) (string, error)
	DeleteExpense(ctx context.Context, tripID, expenseID string) error
	AddPlannedCost(ctx context.Context, tripID string, p core.PlannedCostItem) (string, error)
	SetBudget(ctx context.Context, tripID string, target float64) error
	ClearBudget(ctx context.Context, tripID string) error
	Snapshot(ctx context.Context, tripID string) (ledger.Snapshot, error)
	ComputeReport(ctx context.Context, tripID string) (core.LedgerReport, error)
}

type Server struct {
	http.Server
	ledger   Ledger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	// Reports are recomputed from the full expense history, so cache them
	// per trip and invalidate on every write.
	reportCache  *cache.LRUCache[core.LedgerReport]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger) *Server {
	mux := http.NewServeMux()

	detector := security.NewDetector()
	s := &Server{
		ledger:       ledger,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		detector:     detector,
		reportCache:  cache.NewLRUCache[core.LedgerReport](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /metricsz", s.handleMetrics)

	mux.HandleFunc("POST /api/trips", s.handleCreateTrip)
	mux.HandleFunc("GET /api/trips/{id}/members", s.handleListMembers)
	mux.HandleFunc("POST /api/trips/{id}/members", s.handleAddMember)
	mux.HandleFunc("POST /api/trips/{id}/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/trips/{id}/expenses/{expenseID}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/trips/{id}/planned-costs", s.handleAddPlannedCost)
	mux.HandleFunc("GET /api/trips/{id}/budget", s.handleGetBudget)
	mux.HandleFunc("PUT /api/trips/{id}/budget", s.handleSetBudget)
	mux.HandleFunc("DELETE /api/trips/{id}/budget", s.handleClearBudget)
	mux.HandleFunc("GET /api/trips/{id}/ledger", s.handleGetLedger)
	mux.HandleFunc("GET /api/trips/{id}/balances", s.handleGetBalances)
	mux.HandleFunc("GET /api/trips/{id}/settlements", s.handleGetSettlements)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := headers.Middleware(s.tracer.Middleware(s.withWriteLimit(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// withWriteLimit rate-limits mutating requests per client IP. Reads stay
// unlimited since they are served from the report cache most of the time.
func (s *Server) withWriteLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"client_ip", s.detector.ExtractClientIP(r), "method", r.Method, "path", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
				ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").
					Header("Retry-After", "60").
					Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type metricsResponse struct {
	Requests      trace.Metrics             `json:"requests"`
	RateLimit     ratelimit.Metrics         `json:"rate_limit"`
	Security      security.DetectionMetrics `json:"security"`
	CachedReports int                       `json:"cached_reports"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(metricsResponse{
		Requests:      s.tracer.Snapshot(),
		RateLimit:     s.limiter.GetMetrics(),
		Security:      s.detector.GetMetrics(),
		CachedReports: s.reportCache.Size(),
	}).Write(w)
}

// invalidateReport drops any cached report for the trip after a write.
func (s *Server) invalidateReport(tripID string) {
	s.reportCache.Delete(tripID)
}

// report returns the trip's ledger report, serving from cache when possible.
func (s *Server) report(ctx context.Context, tripID string) (core.LedgerReport, error) {
	if cached, found := s.reportCache.Get(tripID); found {
		slog.DebugContext(ctx, "Report cache hit", "trip_id", tripID)
		return cached, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	report, err := s.ledger.ComputeReport(cctx, tripID)
	if err != nil {
		return core.LedgerReport{}, err
	}

	s.reportCache.Set(tripID, report)
	return report, nil
}

// writeServiceError maps service errors onto API status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, trips.ErrTripNotFound):
		NotFoundError("trip not found").Write(w)
	case errors.Is(err, core.ErrMixedCurrency), errors.Is(err, core.ErrUnbalancedSum):
		ConflictError(err.Error()).Write(w)
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyPayer),
		errors.Is(err, core.ErrEmptyMemberID),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrUnknownPayer),
		errors.Is(err, core.ErrInvalidSource):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			"error", err,
			"request_id", trace.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path)
		InternalServerError("internal error").Write(w)
	}
}
