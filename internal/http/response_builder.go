package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"
)

// Client-side event names sent through HX-Trigger. The analytics panel and
// the expense list both refetch themselves on expenses:changed.
const (
	EventExpensesChanged  = "expenses:changed"
	EventFormReset        = "form:reset"
	EventShowNotification = "show-notification"
)

// NotificationType selects the toast style in app.js.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Toast durations in milliseconds.
const (
	successToastMs = 3000
	errorToastMs   = 5000
)

type notification struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration int              `json:"duration"`
}

// Reply is an HTMX response under construction: status, HX-* headers and an
// optional HTML fragment. Methods chain; Write sends it.
type Reply struct {
	status   int
	header   http.Header
	triggers map[string]any
	body     string
}

// NewReply starts a 200 reply with no body.
func NewReply() *Reply {
	return &Reply{status: http.StatusOK, header: http.Header{}}
}

// Fail builds an error reply whose body is the escaped message inside the
// error banner the form swaps into #form-result.
func Fail(status int, message string) *Reply {
	return NewReply().
		Status(status).
		HTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func (r *Reply) Status(code int) *Reply {
	r.status = code
	return r
}

func (r *Reply) Header(name, value string) *Reply {
	r.header.Set(name, value)
	return r
}

// Trigger queues a client event. A nil payload is sent as {}.
func (r *Reply) Trigger(event string, payload any) *Reply {
	if r.triggers == nil {
		r.triggers = make(map[string]any)
	}
	if payload == nil {
		payload = struct{}{}
	}
	r.triggers[event] = payload
	return r
}

func (r *Reply) ExpensesChanged() *Reply { return r.Trigger(EventExpensesChanged, nil) }

func (r *Reply) ResetForm() *Reply { return r.Trigger(EventFormReset, nil) }

// Notify queues a toast. Only one toast is shown per reply.
func (r *Reply) Notify(kind NotificationType, message string, durationMs int) *Reply {
	return r.Trigger(EventShowNotification, notification{Type: kind, Message: message, Duration: durationMs})
}

func (r *Reply) NotifySuccess(message string) *Reply {
	return r.Notify(NotificationSuccess, message, successToastMs)
}

func (r *Reply) NotifyError(message string) *Reply {
	return r.Notify(NotificationError, message, errorToastMs)
}

// Redirect asks htmx to perform a full page navigation.
func (r *Reply) Redirect(to string) *Reply {
	return r.Header("HX-Redirect", to)
}

// HTML sets a text/html body. The caller is responsible for escaping.
func (r *Reply) HTML(fragment string) *Reply {
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	r.body = fragment
	return r
}

// Text sets a plain body without touching Content-Type.
func (r *Reply) Text(s string) *Reply {
	r.body = s
	return r
}

func (r *Reply) Write(w http.ResponseWriter) {
	dst := w.Header()
	for name, values := range r.header {
		dst[name] = values
	}
	if len(r.triggers) > 0 {
		// Unmarshalable payloads are a programming error; drop the events
		// rather than fail the response.
		if encoded, err := json.Marshal(r.triggers); err == nil {
			dst.Set("HX-Trigger", string(encoded))
		}
	}
	w.WriteHeader(r.status)
	if r.body != "" {
		_, _ = w.Write([]byte(r.body))
	}
}

func BadRequestError(message string) *Reply {
	return Fail(http.StatusBadRequest, message)
}

func UnauthorizedError(message string) *Reply {
	return Fail(http.StatusUnauthorized, message)
}

func NotFoundError(message string) *Reply {
	return Fail(http.StatusNotFound, message)
}

// UnprocessableEntityError is the reply for input that parsed but failed validation.
func UnprocessableEntityError(message string) *Reply {
	return Fail(http.StatusUnprocessableEntity, message)
}

// TooManyRequestsError sets Retry-After so well-behaved clients back off.
func TooManyRequestsError(message string, retryAfterSeconds int) *Reply {
	return Fail(http.StatusTooManyRequests, message).
		Header("Retry-After", strconv.Itoa(retryAfterSeconds))
}

func InternalServerError(message string) *Reply {
	return Fail(http.StatusInternalServerError, message)
}

// MethodNotAllowedError carries no body, only the Allow list.
func MethodNotAllowedError(allowed ...string) *Reply {
	return NewReply().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", strings.Join(allowed, ", "))
}
