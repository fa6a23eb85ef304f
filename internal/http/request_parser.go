package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

var errMalformedBody = errors.New("malformed request body")

// fields is a request body flattened to trimmed, sanitized strings. htmx
// posts form-encoded bodies; scripted clients may post a flat JSON object.
type fields map[string]string

func (f fields) get(key string) string { return f[key] }

// readFields decodes the body of r, capped at maxBodyBytes. An empty body
// yields no fields and no error.
func readFields(w http.ResponseWriter, r *http.Request) (fields, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return fields{}, nil
	}
	if isJSON(r.Header.Get("Content-Type"), raw) {
		return decodeJSONFields(raw)
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	out := make(fields, len(values))
	for k := range values {
		out[k] = sanitizeInput(values.Get(k))
	}
	return out, nil
}

func isJSON(contentType string, raw []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/json" {
		return true
	}
	return raw[0] == '{'
}

// decodeJSONFields keeps numbers in their submitted text, so "12.50" is not
// rounded through float64 before the amount parser sees it.
func decodeJSONFields(raw []byte) (fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	out := make(fields, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			out[k] = sanitizeInput(val)
		case json.Number:
			out[k] = val.String()
		case bool:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// ParseExpenseForm builds a NewExpense from submitted fields. A blank date
// means today.
func ParseExpenseForm(f fields, today core.Date) (core.NewExpense, error) {
	amount, err := core.ParseAmount(f.get("amount"))
	if err != nil {
		return core.NewExpense{}, err
	}
	date := today
	if v := f.get("date"); v != "" {
		if date, err = core.ParseDate(v); err != nil {
			return core.NewExpense{}, err
		}
	}
	return core.NewExpense{
		Amount:      amount,
		Category:    f.get("category"),
		Description: f.get("description"),
		Date:        date,
	}, nil
}

// allowMethods returns a 405 reply unless r uses one of methods.
func allowMethods(r *http.Request, methods ...string) *Reply {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(methods...)
}
