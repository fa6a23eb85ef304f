package security

import (
	"fmt"
	"net/http"
	"strings"
)

// Directive is one Content-Security-Policy entry, e.g. {"script-src", "'self'"}.
type Directive struct {
	Name    string
	Sources []string
}

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// CSP directives in emission order. ScriptOrigins are appended to
	// script-src; the page loads htmx from a CDN.
	CSP           []Directive
	ScriptOrigins []string

	// HSTS is only sent over TLS, or when a proxy reports https.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy string
	OpenerPolicy      string
	ResourcePolicy    string
}

// DefaultHeadersConfig returns the policy for the server-rendered UI.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: []Directive{
			{"default-src", []string{"'self'"}},
			{"script-src", []string{"'self'"}},
			{"style-src", []string{"'self'", "'unsafe-inline'"}},
			{"img-src", []string{"'self'", "data:"}},
			{"connect-src", []string{"'self'"}},
			{"object-src", []string{"'none'"}},
			{"frame-ancestors", []string{"'none'"}},
			{"base-uri", []string{"'self'"}},
			{"form-action", []string{"'self'"}},
		},
		ScriptOrigins: []string{"https://unpkg.com"},

		HSTSMaxAge:            365 * 24 * 60 * 60,
		HSTSIncludeSubdomains: true,

		FrameOptions:      "DENY",
		ReferrerPolicy:    "strict-origin-when-cross-origin",
		PermissionsPolicy: "geolocation=(), microphone=(), camera=(), payment=()",
		OpenerPolicy:      "same-origin",
		ResourcePolicy:    "same-origin",
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	static http.Header
	hsts   string
}

// NewHeadersMiddleware renders the configured policy once; requests only copy it.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	static := http.Header{}
	static.Set("X-Content-Type-Options", "nosniff")
	static.Set("X-Frame-Options", config.FrameOptions)
	static.Set("Referrer-Policy", config.ReferrerPolicy)
	static.Set("Permissions-Policy", config.PermissionsPolicy)
	static.Set("Cross-Origin-Opener-Policy", config.OpenerPolicy)
	static.Set("Cross-Origin-Resource-Policy", config.ResourcePolicy)
	if csp := config.policy(); csp != "" {
		static.Set("Content-Security-Policy", csp)
	}

	h := &HeadersMiddleware{static: static}
	if config.HSTSMaxAge > 0 {
		h.hsts = fmt.Sprintf("max-age=%d", config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			h.hsts += "; includeSubDomains"
		}
	}
	return h
}

func (c HeadersConfig) policy() string {
	parts := make([]string, 0, len(c.CSP))
	for _, d := range c.CSP {
		sources := d.Sources
		if d.Name == "script-src" {
			sources = append(append([]string(nil), sources...), c.ScriptOrigins...)
		}
		parts = append(parts, d.Name+" "+strings.Join(sources, " "))
	}
	return strings.Join(parts, "; ")
}

// Middleware returns the HTTP middleware function
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for name, values := range h.static {
			if values[0] != "" {
				headers[name] = values
			}
		}
		if h.hsts != "" && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
			headers.Set("Strict-Transport-Security", h.hsts)
		}
		// Fragments and full pages share URLs with the page shell; keep
		// caches from serving one for the other.
		if r.Header.Get("HX-Request") == "true" {
			headers.Set("Cache-Control", "no-store")
			headers.Add("Vary", "HX-Request")
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware adds caching headers for static assets
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
