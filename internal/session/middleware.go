package session

import (
	"net/http"

	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
)

// Middleware attaches a verified session to the request context when the
// request carries a valid token. Requests without one pass through untouched;
// handlers decide whether a session is required.
func Middleware(v *Verifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r, cookieName)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			s, err := v.Verify(raw)
			if err != nil {
				applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).DebugContext(r.Context(),
					"Rejected session token",
					applog.FieldErrorType, applog.ErrorTypeAuth,
					applog.FieldError, err.Error())
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
		})
	}
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, cookieName string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Require runs next only when the request carries a session; otherwise it
// hands the request to unauthorized.
func Require(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
