package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/auth"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

var errBadRequest = errors.New("invalid request body")

type errorBody struct {
	Message string `json:"message"`
}

type messageBody struct {
	Message string `json:"message"`
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err, "path", r.URL.Path)
	}
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err.Error(),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
	}
	writeJSON(w, r, status, errorBody{Message: msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, core.ErrInvalidIdentifier):
		return http.StatusBadRequest, "invalid identifier"
	case errors.Is(err, core.ErrInvalidWindow):
		return http.StatusBadRequest, "days must be a non-negative integer"
	case errors.Is(err, core.ErrInvalidType):
		return http.StatusBadRequest, "invalid transaction type"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid request body"
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "amount must be a positive number"
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity, "invalid date"
	case errors.Is(err, core.ErrEmptyCategory):
		return http.StatusUnprocessableEntity, "category is required"
	case errors.Is(err, core.ErrEmptyLabel):
		return http.StatusUnprocessableEntity, "source is required"
	case errors.Is(err, core.ErrLabelTooLong):
		return http.StatusUnprocessableEntity, fmt.Sprintf("label must be at most %d bytes", core.MaxLabelLen)
	case errors.Is(err, core.ErrCategoryTooLong):
		return http.StatusUnprocessableEntity, fmt.Sprintf("category must be at most %d bytes", core.MaxCategoryLen)
	case errors.Is(err, core.ErrDuplicateCategory):
		return http.StatusConflict, "a budget for this category already exists"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// requireUser rejects the request unless it carries a well-formed identity.
// Write handlers call it before reading the body.
func requireUser(w http.ResponseWriter, r *http.Request) bool {
	if err := core.ValidateUserID(auth.UserIDFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

// decodeJSON reads a single JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var amountErr amountError
		if errors.As(err, &amountErr) {
			return core.ErrInvalidAmount
		}
		var dateErr dateError
		if errors.As(err, &dateErr) {
			return core.ErrInvalidDate
		}
		return errBadRequest
	}
	if _, err := dec.Token(); err != io.EOF {
		return errBadRequest
	}
	return nil
}

type amountError struct{}

func (amountError) Error() string { return "amount is not a number" }

// amount accepts a JSON number or a numeric string and keeps its exact
// decimal value.
type amount decimal.Decimal

func (a *amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return amountError{}
	}
	*a = amount(d)
	return nil
}

func (a amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

type dateError struct{}

func (dateError) Error() string { return "date is not valid" }

// date accepts RFC 3339 timestamps or plain YYYY-MM-DD days. Empty means unset.
type date time.Time

func (d *date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return dateError{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = date(t)
			return nil
		}
	}
	return dateError{}
}

func (d date) Time() time.Time { return time.Time(d) }

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
