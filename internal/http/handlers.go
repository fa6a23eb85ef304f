package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/analytics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/session"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/storage"
)

// suggestLimit caps the category datalist.
const suggestLimit = 8

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.svc.Ready(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.summaries != nil {
		stats := s.summaries.Stats()
		checks["summary_cache"] = map[string]interface{}{
			"entries":   stats.Size,
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"hit_ratio": stats.HitRatio(),
			"status":    "ok",
		}
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"rejected":       s.rateLimiter.Hits(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

type signinData struct {
	Error string
}

type indexData struct {
	Email          string
	Today          string
	MaxCategory    int
	MaxDescription int
}

// handleIndex renders the page shell, or the sign-in notice without a session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		s.render(w, r, http.StatusUnauthorized, "signin.html", signinData{})
		return
	}
	s.render(w, r, http.StatusOK, "index.html", indexData{
		Email:          sess.Email,
		Today:          s.today().String(),
		MaxCategory:    core.MaxCategoryLength,
		MaxDescription: core.MaxDescriptionLength,
	})
}

type analyticsData struct {
	HasData bool
	Summary analytics.Summary
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	sum, ok, err := s.svc.Summary(r.Context(), sess, s.today())
	if err != nil {
		s.logStoreError(r, "Failed to load analytics", applog.OpSummarize, err)
		InternalServerError("Could not load analytics").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "analytics.html", analyticsData{HasData: ok, Summary: sum})
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	res, err := s.svc.List(r.Context(), sess, sanitizeInput(r.URL.Query().Get("category")))
	if err != nil {
		s.logStoreError(r, "Failed to load expenses", applog.OpList, err)
		InternalServerError("Could not load expenses").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "expenses.html", res)
}

func (s *Server) handleSuggestCategories(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	names, err := s.svc.SuggestCategories(r.Context(), sess, sanitizeInput(r.URL.Query().Get("category")), suggestLimit)
	if err != nil {
		s.logStoreError(r, "Failed to suggest categories", applog.OpList, err)
		InternalServerError("Could not load categories").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "suggest.html", names)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if reply := allowMethods(r, http.MethodPost); reply != nil {
		reply.Write(w)
		return
	}
	sess, _ := session.FromContext(r.Context())

	form, err := readFields(w, r)
	if err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	in, err := ParseExpenseForm(form, s.today())
	if err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	e, err := s.svc.Create(r.Context(), sess, in)
	if err != nil {
		if core.IsValidationError(err) {
			UnprocessableEntityError(validationMessage(err)).Write(w)
			return
		}
		s.logStoreError(r, "Failed to save expense", applog.OpCreate, err)
		InternalServerError("Could not save the expense").
			NotifyError("Could not save the expense").
			Write(w)
		return
	}

	msg := fmt.Sprintf("Added %s for %s", e.Amount.FormatCurrency(), e.Category)
	NewReply().
		ExpensesChanged().
		ResetForm().
		NotifySuccess(msg).
		HTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if reply := allowMethods(r, http.MethodDelete, http.MethodPost); reply != nil {
		reply.Write(w)
		return
	}
	sess, _ := session.FromContext(r.Context())

	form, err := readFields(w, r)
	if err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := form.get("id")
	if id == "" {
		id = sanitizeInput(r.URL.Query().Get("id"))
	}
	if id == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	if err := s.svc.Delete(r.Context(), sess, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFoundError("Expense not found").
				ExpensesChanged().
				Write(w)
			return
		}
		s.logStoreError(r, "Failed to delete expense", applog.OpDelete, err)
		InternalServerError("Could not delete the expense").
			NotifyError("Could not delete the expense").
			Write(w)
		return
	}

	NewReply().
		ExpensesChanged().
		Notify(NotificationSuccess, "Expense deleted", 2000).
		Write(w)
}

// handleSignIn exchanges a token from the identity provider for the
// HttpOnly session cookie.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if reply := allowMethods(r, http.MethodPost); reply != nil {
		reply.Write(w)
		return
	}

	form, err := readFields(w, r)
	if err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	raw := form.get("token")
	sess, err := s.verifier.Verify(raw)
	if err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentSession).InfoContext(r.Context(),
			"Sign-in rejected",
			applog.FieldErrorType, applog.ErrorTypeAuth,
			applog.FieldError, err.Error())
		s.render(w, r, http.StatusUnauthorized, "signin.html", signinData{
			Error: "That sign-in token is invalid or has expired.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    raw,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	redirect(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if reply := allowMethods(r, http.MethodPost); reply != nil {
		reply.Write(w)
		return
	}
	session.ClearCookie(w, s.cookieName, s.secureCookies)
	redirect(w, r, "/")
}

// redirect uses HX-Redirect for HTMX requests and a 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		NewReply().Redirect(to).Write(w)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) logStoreError(r *http.Request, msg, op string, err error) {
	errorType := applog.ErrorTypeDatabase
	if errors.Is(err, context.DeadlineExceeded) {
		errorType = applog.ErrorTypeTimeout
	}
	applog.FromContext(r.Context()).Failure(r.Context(), msg, err, op, errorType,
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
}
