package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret-with-enough-length"

func TestIssueAndVerify(t *testing.T) {
	tok, err := NewIssuer(secret).Issue("user-1", "a@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	s, err := NewVerifier(secret).Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if s.UserID != "user-1" || s.Email != "a@example.com" || s.ExpiresAt.IsZero() {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(secret)

	expiredIssuer := NewIssuer(secret)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredIssuer.Issue("u", "", time.Hour)

	wrongKey, _ := NewIssuer("another-secret").Issue("u", "", time.Hour)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}).SignedString([]byte(secret))
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte(secret))
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte(secret))

	cases := map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"no exp":    noExp,
		"no sub":    noSub,
		"hs512":     hs512,
		"garbage":   "not.a.token",
	}
	for name, tok := range cases {
		if _, err := v.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
	if _, err := v.Verify(""); !errors.Is(err, ErrNoToken) {
		t.Errorf("empty: expected ErrNoToken, got %v", err)
	}
	if _, err := NewIssuer(secret).Issue(" ", "", time.Hour); err == nil {
		t.Errorf("expected error for empty user id")
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := TokenFromRequest(r, DefaultCookieName); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "from-cookie"})
	if got := TokenFromRequest(r, DefaultCookieName); got != "from-cookie" {
		t.Fatalf("got %q", got)
	}
	r.Header.Set("Authorization", "bearer from-header")
	if got := TokenFromRequest(r, DefaultCookieName); got != "from-header" {
		t.Fatalf("header must win, got %q", got)
	}
}

func TestMiddleware(t *testing.T) {
	tok, _ := NewIssuer(secret).Issue("user-9", "", time.Hour)

	var got Session
	var ok bool
	h := Middleware(NewVerifier(secret), DefaultCookieName)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromContext(r.Context())
	}))

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: tok})
	h.ServeHTTP(httptest.NewRecorder(), r)
	if !ok || got.UserID != "user-9" {
		t.Fatalf("expected session in context, got %+v %v", got, ok)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if ok {
		t.Fatalf("invalid token must not produce a session")
	}
}

func TestClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearCookie(rec, DefaultCookieName, true)
	c := rec.Result().Cookies()
	if len(c) != 1 || c[0].MaxAge >= 0 || c[0].Value != "" || !c[0].Secure {
		t.Fatalf("unexpected cookie %+v", c)
	}
}

func TestRequire(t *testing.T) {
	denied := 0
	h := Require(func(w http.ResponseWriter, r *http.Request) {
		denied++
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized || denied != 1 {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(NewContext(req.Context(), Session{UserID: "u"}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through with session, got %d", rr.Code)
	}
}
