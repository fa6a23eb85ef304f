package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HTTPStarted is logged at debug; completion carries everything useful.
func (l *Logger) HTTPStarted(ctx context.Context, r *http.Request, clientIP string) {
	l.LogAttrs(ctx, slog.LevelDebug, "HTTP request started",
		slog.String(FieldMethod, r.Method),
		slog.String(FieldPath, r.URL.Path),
		slog.String(FieldQuery, r.URL.RawQuery),
		slog.String(FieldClientIP, clientIP),
		slog.String(FieldUserAgent, r.Header.Get("User-Agent")),
		slog.String(FieldReferer, r.Header.Get("Referer")))
}

// HTTPCompleted logs 4xx as warnings and 5xx as errors.
func (l *Logger) HTTPCompleted(ctx context.Context, r *http.Request, status int, elapsed time.Duration, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	l.LogAttrs(ctx, level, "HTTP request completed",
		slog.String(FieldMethod, r.Method),
		slog.String(FieldPath, r.URL.Path),
		slog.Int(FieldStatusCode, status),
		slog.Int64(FieldDuration, elapsed.Milliseconds()),
		slog.Bool(FieldSuccess, status < 400),
		slog.String(FieldClientIP, clientIP))
}

func (l *Logger) ExpenseCreated(ctx context.Context, userID, id string, amountCents int64, category, date string) {
	l.LogAttrs(ctx, slog.LevelInfo, "Expense created",
		slog.String(FieldOperation, OpCreate),
		slog.String(FieldUserID, userID),
		slog.String(FieldExpenseID, id),
		slog.Int64(FieldAmountCents, amountCents),
		slog.String(FieldCategory, category),
		slog.String(FieldDate, date))
}

func (l *Logger) ExpenseDeleted(ctx context.Context, userID, id string) {
	l.LogAttrs(ctx, slog.LevelInfo, "Expense deleted",
		slog.String(FieldOperation, OpDelete),
		slog.String(FieldUserID, userID),
		slog.String(FieldExpenseID, id))
}

// Failure logs err at error level under op. errorType is one of the
// ErrorType constants; args are extra key/value pairs.
func (l *Logger) Failure(ctx context.Context, msg string, err error, op, errorType string, args ...any) {
	attrs := []any{FieldOperation, op, FieldErrorType, errorType}
	if err != nil {
		attrs = append(attrs, FieldError, err.Error())
	}
	l.ErrorContext(ctx, msg, append(attrs, args...)...)
}
