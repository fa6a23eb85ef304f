package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

func postBody(contentType, body string) (*httptest.ResponseRecorder, *http.Request) {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return httptest.NewRecorder(), req
}

func TestParseExpenseForm(t *testing.T) {
	today := core.NewDate(2025, 3, 10)
	tests := []struct {
		name     string
		body     string
		wantErr  error
		wantCent int64
		wantDate string
	}{
		{
			name:     "all fields",
			body:     "amount=12.50&category=Food&description=lunch&date=2025-03-01",
			wantCent: 1250,
			wantDate: "2025-03-01",
		},
		{
			name:     "blank date defaults to today",
			body:     "amount=3&category=Coffee",
			wantCent: 300,
			wantDate: "2025-03-10",
		},
		{
			name:    "bad amount",
			body:    "amount=abc&category=Food",
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:     "rounded to cents",
			body:     "amount=1.235&category=Food&date=2025-01-01",
			wantCent: 124,
			wantDate: "2025-01-01",
		},
		{
			name:    "bad date",
			body:    "amount=1&category=Food&date=03/01/2025",
			wantErr: core.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := readFields(postBody("application/x-www-form-urlencoded", tt.body))
			if err != nil {
				t.Fatalf("readFields() error = %v", err)
			}

			got, err := ParseExpenseForm(f, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Amount.Cents != tt.wantCent {
				t.Errorf("Cents = %d, want %d", got.Amount.Cents, tt.wantCent)
			}
			if got.Date.String() != tt.wantDate {
				t.Errorf("Date = %s, want %s", got.Date, tt.wantDate)
			}
		})
	}
}

func TestReadFields(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        map[string]string
		wantErr     bool
	}{
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "id=456&category=Eating+out&note=%20padded%20",
			want:        map[string]string{"id": "456", "category": "Eating out", "note": "padded"},
		},
		{
			name:        "json keeps number text",
			contentType: "application/json; charset=utf-8",
			body:        `{"id": "123", "amount": 12.50, "recurring": true}`,
			want:        map[string]string{"id": "123", "amount": "12.50", "recurring": "true"},
		},
		{
			name: "json sniffed without content type",
			body: `{"id":"abc"}`,
			want: map[string]string{"id": "abc"},
		},
		{
			name:        "json nested values ignored",
			contentType: "application/json",
			body:        `{"id":"x","tags":["a"]}`,
			want:        map[string]string{"id": "x"},
		},
		{
			name:        "control characters stripped",
			contentType: "application/x-www-form-urlencoded",
			body:        "category=Fo%00od",
			want:        map[string]string{"category": "Food"},
		},
		{
			name: "empty",
			want: map[string]string{},
		},
		{
			name:        "broken json",
			contentType: "application/json",
			body:        `{"id":`,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readFields(postBody(tt.contentType, tt.body))
			if tt.wantErr {
				if !errors.Is(err, errMalformedBody) {
					t.Fatalf("error = %v, want errMalformedBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got.get(k) != v {
					t.Errorf("%s = %q, want %q", k, got.get(k), v)
				}
			}
		})
	}
}

func TestReadFieldsTooLarge(t *testing.T) {
	body := "description=" + strings.Repeat("x", maxBodyBytes)
	if _, err := readFields(postBody("application/x-www-form-urlencoded", body)); !errors.Is(err, errMalformedBody) {
		t.Fatalf("oversized body: error = %v", err)
	}
}

func TestAllowMethods(t *testing.T) {
	tests := []struct {
		method    string
		allowed   []string
		wantAllow string
	}{
		{http.MethodPost, []string{http.MethodPost}, ""},
		{http.MethodDelete, []string{http.MethodDelete, http.MethodPost}, ""},
		{http.MethodGet, []string{http.MethodPost}, "POST"},
		{http.MethodPut, []string{http.MethodDelete, http.MethodPost}, "DELETE, POST"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			reply := allowMethods(httptest.NewRequest(tt.method, "/expenses", nil), tt.allowed...)
			if tt.wantAllow == "" {
				if reply != nil {
					t.Fatal("expected method to be allowed")
				}
				return
			}
			if reply == nil {
				t.Fatal("expected a 405 reply")
			}
			w := httptest.NewRecorder()
			reply.Write(w)
			if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != tt.wantAllow {
				t.Fatalf("got %d Allow=%q", w.Code, w.Header().Get("Allow"))
			}
		})
	}
}
