package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct public", "203.0.113.9:5555", "", "", "203.0.113.9"},
		{"spoofed header from public ip", "203.0.113.9:5555", "1.2.3.4", "", "203.0.113.9"},
		{"trusted proxy xff", "10.0.0.2:80", "198.51.100.7, 10.0.0.2", "", "198.51.100.7"},
		{"trusted proxy x-real-ip", "127.0.0.1:80", "", "198.51.100.8", "198.51.100.8"},
		{"trusted proxy garbage xff", "127.0.0.1:80", "nope", "", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()

	clean := httptest.NewRequest(http.MethodGet, "/ui/expenses?category=Food", nil)
	clean.Header.Set("User-Agent", "Mozilla/5.0")
	if d.DetectSuspiciousRequest(clean) {
		t.Fatalf("clean request flagged")
	}

	for _, target := range []string{"/.env", "/wp-admin/", "/ui/expenses?category=../../etc/passwd"} {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		r.Header.Set("User-Agent", "Mozilla/5.0")
		if !d.DetectSuspiciousRequest(r) {
			t.Errorf("%s not flagged", target)
		}
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", "sqlmap/1.7")
	if !d.DetectSuspiciousRequest(r) {
		t.Errorf("scanner user agent not flagged")
	}

	if got := d.GetMetrics().SuspiciousRequests; got != 4 {
		t.Fatalf("expected 4 suspicious requests, got %d", got)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("basic headers missing: %v", rr.Header())
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "https://unpkg.com") {
		t.Fatalf("CSP must allow the htmx CDN")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Fatalf("unexpected HSTS %q", got)
	}
}

func TestHeadersMiddlewareFragments(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/ui/analytics", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("fragment Cache-Control = %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "HX-Request" {
		t.Fatalf("fragment Vary = %q", got)
	}
	if rr.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("HSTS expected behind an https proxy")
	}
}

func TestHeadersConfigPolicy(t *testing.T) {
	cfg := HeadersConfig{
		CSP:           []Directive{{"default-src", []string{"'self'"}}, {"script-src", []string{"'self'"}}},
		ScriptOrigins: []string{"https://cdn.example"},
	}
	want := "default-src 'self'; script-src 'self' https://cdn.example"
	if got := cfg.policy(); got != want {
		t.Fatalf("policy = %q, want %q", got, want)
	}
	// ScriptOrigins must not leak into the caller's slice.
	if len(cfg.CSP[1].Sources) != 1 {
		t.Fatalf("script-src sources mutated: %v", cfg.CSP[1].Sources)
	}
}

func TestInspectReasons(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		method, target, agent, want string
	}{
		{http.MethodGet, "/ui/analytics", "Mozilla/5.0", ""},
		{"TRACE", "/", "Mozilla/5.0", "method"},
		{http.MethodGet, "/index.php", "Mozilla/5.0", "path:.php"},
		{http.MethodGet, "/", "Nikto/2.5", "agent:nikto"},
		{http.MethodGet, "/?q=" + strings.Repeat("a", maxURLLength), "", "url_length"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, tt.target, nil)
		r.Header.Set("User-Agent", tt.agent)
		if got := d.Inspect(r); got != tt.want {
			t.Errorf("%s %s: reason %q, want %q", tt.method, tt.target, got, tt.want)
		}
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.1:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.20")

	if got := d.ExtractClientIP(r); got != "203.0.113.1" {
		t.Fatalf("untrusted peer: got %q", got)
	}
	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatal(err)
	}
	if got := d.ExtractClientIP(r); got != "198.51.100.20" {
		t.Fatalf("trusted peer: got %q", got)
	}
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Fatal("expected error for bad CIDR")
	}
}
