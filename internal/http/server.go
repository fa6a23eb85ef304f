// Package http serves the expense tracker UI: the page shell, the htmx
// fragments it loads, and the form endpoints that mutate expenses.
package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/analytics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/cache"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/metrics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/middleware/ratelimit"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/middleware/security"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/middleware/trace"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/services"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/session"
	appweb "github.com/aadhiseshansscse/ExpenseTrackerapp/web"
)

const (
	// readyTimeout bounds readiness probes against the record store.
	readyTimeout = 5 * time.Second

	cacheCleanupInterval = 10 * time.Minute
	staticMaxAge         = 3600
	maxBodyBytes         = 64 << 10
)

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	CookieName         string
	SecureCookies      bool
	RateLimitPerMinute int

	// Summaries is the analytics memo shared with the service; the server
	// sweeps it and exports its hit ratio.
	Summaries *analytics.Memo
	Metrics   *metrics.Metrics
	Logger    *applog.Logger

	// Now overrides the clock used to decide "today".
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	svc       *services.ExpenseService
	verifier  *session.Verifier
	logger    *applog.Logger
	metrics   *metrics.Metrics
	summaries *analytics.Memo

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	janitor          *cache.Janitor

	cookieName    string
	secureCookies bool
	now           func() time.Time
	started       time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, svc *services.ExpenseService, verifier *session.Verifier, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	detector := security.NewDetector()
	s := &Server{
		svc:              svc,
		verifier:         verifier,
		logger:           logger,
		metrics:          opts.Metrics,
		summaries:        opts.Summaries,
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(opts.Logger, detector.ExtractClientIP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		cookieName:    opts.CookieName,
		secureCookies: opts.SecureCookies,
		now:           opts.Now,
		started:       opts.Now(),
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.rateLimiter.Stop()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	s.janitor = cache.NewJanitor(func(removed int) {
		s.logger.Debug("Cache cleanup completed", "entries_removed", removed)
	})
	if s.summaries != nil {
		s.janitor.Watch(s.summaries)
		s.metrics.RegisterCacheStats("summary", s.summaries.Stats)
	}
	s.janitor.Start(cacheCleanupInterval)
	s.registerMetrics()

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		s.janitor.Stop()
		s.rateLimiter.Stop()
		return nil, err
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", s.route("/static/", security.StaticAssetMiddleware(staticMaxAge)(static)))

	authed := session.Require(s.handleUnauthorized)

	mux.Handle("GET /{$}", s.route("/", http.HandlerFunc(s.handleIndex)))
	mux.Handle("GET /healthz", s.route("/healthz", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /readyz", s.route("/readyz", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", s.metrics.Handler())

	// UI partials
	mux.Handle("GET /ui/analytics", s.route("/ui/analytics", authed(http.HandlerFunc(s.handleAnalytics))))
	mux.Handle("GET /ui/expenses", s.route("/ui/expenses", authed(http.HandlerFunc(s.handleExpenses))))
	mux.Handle("GET /ui/categories/suggest", s.route("/ui/categories/suggest", authed(http.HandlerFunc(s.handleSuggestCategories))))

	// Mutations check their own methods so they can answer with an Allow header.
	mux.Handle("/expenses", s.route("/expenses", authed(http.HandlerFunc(s.handleCreateExpense))))
	mux.Handle("/expenses/delete", s.route("/expenses/delete", authed(http.HandlerFunc(s.handleDeleteExpense))))
	mux.Handle("/session", s.route("/session", http.HandlerFunc(s.handleSignIn)))
	mux.Handle("/session/logout", s.route("/session/logout", http.HandlerFunc(s.handleLogout)))
	return nil
}

// middleware wraps the mux, outermost first: tracing, security headers,
// suspicious request detection, session, rate limiting.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := s.rateLimiter.Middleware(s.rateLimitKey, isMutation, s.handleRateLimited)(next)
	h = session.Middleware(s.verifier, s.cookieName)(h)
	h = s.securityDetector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.traceMiddleware.Middleware(h)
}

// route records request count and latency under the route pattern rather
// than the raw path, keeping label cardinality bounded.
func (s *Server) route(pattern string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &trace.ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		h.ServeHTTP(rw, r)
		s.metrics.ObserveRequest(r.Method, pattern, rw.StatusCode, time.Since(start))
	})
}

func (s *Server) registerMetrics() {
	s.metrics.RegisterGaugeFunc("ratelimit_active_clients", "Callers currently tracked by the rate limiter.",
		func() float64 { return float64(s.rateLimiter.ActiveClients()) })
	s.metrics.RegisterCounterFunc("suspicious_requests_total", "Requests flagged by the security detector.",
		func() float64 { return float64(s.securityDetector.GetMetrics().SuspiciousRequests) })
	s.metrics.RegisterCounterFunc("invalid_ip_total", "Requests carrying an unparsable client address.",
		func() float64 { return float64(s.securityDetector.GetMetrics().InvalidIPAttempts) })
	s.metrics.RegisterCounterFunc("traced_requests_total", "Requests seen by the trace middleware.",
		func() float64 { return float64(s.traceMiddleware.GetMetrics().TotalRequests) })
}

func isMutation(r *http.Request) bool {
	return r.Method == http.MethodPost || r.Method == http.MethodDelete
}

// rateLimitKey buckets signed-in callers by owner and everyone else by address.
func (s *Server) rateLimitKey(r *http.Request) string {
	if sess, ok := session.FromContext(r.Context()); ok {
		return "user:" + sess.UserID
	}
	return "ip:" + s.securityDetector.ExtractClientIP(r)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited()
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	const msg = "Too many requests. Please slow down and try again shortly."
	retry := int(s.rateLimiter.RetryAfter(s.rateLimitKey(r)) / time.Second)
	TooManyRequestsError(msg, max(retry, 1)).
		NotifyError(msg).
		Write(w)
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	msg := "Your session has expired. Please sign in again."
	UnauthorizedError(msg).NotifyError(msg).Write(w)
}

// render executes a template into a buffer first so a failing template
// never leaves a half-written 200 behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(),
			"Template execution failed",
			"template", name,
			applog.FieldError, err.Error())
		InternalServerError("Something went wrong while rendering the page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// today is the calendar date used for the rolling window.
func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Close stops background routines without waiting for in-flight requests.
// Tests that never call ListenAndServe use it.
func (s *Server) Close() error {
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.Stop()
	})
	return s.Server.Close()
}
