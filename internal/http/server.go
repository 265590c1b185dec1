package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"nippo/internal/cache"
	"nippo/internal/core"
	applog "nippo/internal/log"
	"nippo/internal/middleware/ratelimit"
	"nippo/internal/middleware/security"
	"nippo/internal/middleware/trace"
	"nippo/internal/services"
)

// ReportService is the subset of services.ReportService the API needs.
type ReportService interface {
	Submit(ctx context.Context, in core.ReportInput) (core.Report, error)
	Edit(ctx context.Context, id int64, in core.ReportInput) (core.Report, error)
	Get(ctx context.Context, id int64) (core.Report, error)
	List(ctx context.Context) ([]core.Report, error)
	Delete(ctx context.Context, id int64) error
	WeeklyReport(ctx context.Context, ref time.Time) (services.WeeklyReport, error)
	MonthlyReport(ctx context.Context, ref time.Time) (services.MonthlyReport, error)
	GenerateDailyReport(ctx context.Context, id int64) (string, error)
}

// Config holds server settings.
type Config struct {
	Addr               string
	CacheTTL           time.Duration // zero disables summary caching
	CacheSize          int
	RateLimitPerMinute int
	// Ready backs /readyz; nil always reports ready.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger
	// Now overrides the clock used for default reference dates.
	Now func() time.Time
}

// Server is an http.Server serving the report API.
type Server struct {
	http.Server
	svc     ReportService
	ready   func(ctx context.Context) error
	now     func() time.Time
	logger  *applog.Logger
	slog    *applog.StructuredLogger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	weekly  *cache.Loader[services.WeeklyReport]
	monthly *cache.Loader[services.MonthlyReport]
	caches  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc ReportService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 64
	}

	s := &Server{
		svc:     svc,
		ready:   cfg.Ready,
		now:     now,
		logger:  logger,
		slog:    applog.NewStructuredLogger(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		caches:  cache.NewManager(),
	}
	if cfg.CacheTTL > 0 {
		s.weekly = cache.NewLoader(cache.NewLRUCache[services.WeeklyReport](size, cfg.CacheTTL))
		s.monthly = cache.NewLoader(cache.NewLRUCache[services.MonthlyReport](size, cfg.CacheTTL))
		s.caches.Register(s.weekly.Cache())
		s.caches.Register(s.monthly.Cache())
		s.caches.StartCleanup(cfg.CacheTTL)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /reports", s.handleListReports)
	mux.HandleFunc("POST /reports", s.handleCreateReport)
	mux.HandleFunc("GET /reports/{id}", s.handleGetReport)
	mux.HandleFunc("POST /reports/{id}", s.handleEditReport)
	mux.HandleFunc("PUT /reports/{id}", s.handleEditReport)
	mux.HandleFunc("DELETE /reports/{id}", s.handleDeleteReport)
	mux.HandleFunc("GET /reports/{id}/daily", s.handleDailyReport)
	mux.HandleFunc("GET /weekly-report", s.handleWeeklyReport)
	mux.HandleFunc("GET /monthly-report", s.handleMonthlyReport)
	mux.HandleFunc("GET /monthly-report.xlsx", s.handleMonthlyWorkbook)

	detector := security.NewDetector()
	s.tracer = trace.NewMiddleware(logger, detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
		TooManyRequests().Write(w)
	}, http.MethodPost, http.MethodPut, http.MethodDelete)

	var handler http.Handler = mux
	handler = limit(handler)
	handler = detector.Handler(handler)
	handler = headers.Handler(handler)
	handler = s.tracer.Handler(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Metrics returns request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// ListenAndServe runs the server until Shutdown; a clean stop returns nil.
func (s *Server) ListenAndServe() error {
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// invalidateSummaries drops cached summaries after a write.
func (s *Server) invalidateSummaries() {
	if s.weekly != nil {
		s.weekly.Invalidate()
		s.monthly.Invalidate()
	}
}

func (s *Server) weeklyReport(ctx context.Context, ref time.Time) (services.WeeklyReport, error) {
	if s.weekly == nil {
		return s.svc.WeeklyReport(ctx, ref)
	}
	key := "weekly:" + core.WeekOf(ref).StartISO()
	return s.weekly.Get(ctx, key, func(ctx context.Context) (services.WeeklyReport, error) {
		return s.svc.WeeklyReport(ctx, ref)
	})
}

func (s *Server) monthlyReport(ctx context.Context, ref time.Time) (services.MonthlyReport, error) {
	if s.monthly == nil {
		return s.svc.MonthlyReport(ctx, ref)
	}
	key := "monthly:" + core.MonthOf(ref).StartISO()
	return s.monthly.Get(ctx, key, func(ctx context.Context) (services.MonthlyReport, error) {
		return s.svc.MonthlyReport(ctx, ref)
	})
}
