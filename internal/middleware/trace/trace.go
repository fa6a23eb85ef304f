// Package trace tags every request with an id, puts a request-scoped logger
// in its context and logs its completion.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
)

// RequestIDHeader is read from trusted upstreams and echoed back.
const RequestIDHeader = "X-Request-ID"

const maxInboundIDLength = 64

type requestIDKey struct{}

type Middleware struct {
	logger    *applog.Logger
	extractIP func(*http.Request) string
	total     atomic.Int64
}

type Metrics struct {
	TotalRequests int64
}

// NewMiddleware uses extractIP, when set, to attribute requests to a client.
func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Middleware{
		logger:    logger.WithComponent(applog.ComponentHTTP),
		extractIP: extractIP,
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.total.Add(1)

		var clientIP string
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		id := RequestID(r)
		reqLogger := m.logger.With(applog.FieldRequestID, id)
		ctx := applog.NewContext(context.WithValue(r.Context(), requestIDKey{}, id), reqLogger)
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, id)

		reqLogger.HTTPStarted(ctx, r, clientIP)
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		reqLogger.HTTPCompleted(ctx, r, rw.StatusCode, time.Since(start), clientIP)
	})
}

// RequestID keeps a well-formed inbound X-Request-ID so logs line up with
// the proxy's, and mints a UUID otherwise.
func RequestID(r *http.Request) string {
	if in := r.Header.Get(RequestIDHeader); validInboundID(in) {
		return in
	}
	return uuid.NewString()
}

func validInboundID(id string) bool {
	if id == "" || len(id) > maxInboundIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// FromContext returns the id assigned to the current request, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{TotalRequests: m.total.Load()}
}

// ResponseWriter remembers the first status written through it.
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode  int
	wroteHeader bool
}

func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.StatusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
