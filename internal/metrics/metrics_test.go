package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/cache"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/ui/analytics", 200, 15*time.Millisecond)
	m.ExpenseCreated()
	m.ExpenseDeleted()
	m.PublishFailed()
	m.RateLimited()
	m.MirrorEvent("expense.created", errors.New("x"))
	m.RegisterCacheStats("summary", func() cache.Stats { return cache.Stats{Hits: 3, Misses: 1, Size: 2} })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`expenses_http_requests_total{code="200",method="GET",route="/ui/analytics"} 1`,
		`expenses_mutations_total{op="create"} 1`,
		`expenses_event_publish_failures_total 1`,
		`expenses_mirror_events_total{outcome="error",type="expense.created"} 1`,
		`expenses_cache_hits_total{cache="summary"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.ExpenseCreated()
	m.MirrorEvent("x", nil)
	m.RegisterCacheStats("x", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("expected 404 without registry, got %d", rec.Code)
	}
}

func TestFuncCollectors(t *testing.T) {
	m := New()
	m.RegisterGaugeFunc("rate_limit_clients", "Tracked clients.", func() float64 { return 4 })
	m.RegisterCounterFunc("suspicious_requests_total", "Suspicious requests.", func() float64 { return 2 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	out := rec.Body.String()
	for _, want := range []string{"expenses_rate_limit_clients 4", "expenses_suspicious_requests_total 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}
