package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind string

const (
	KindNetwork      Kind = "NETWORK_ERROR"
	KindTimeout      Kind = "TIMEOUT_ERROR"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindServer       Kind = "SERVER_ERROR"
	KindValidation   Kind = "VALIDATION_ERROR"
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrNetwork      = errors.New("network error")
	ErrTimeout      = errors.New("request timed out")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrValidation   = errors.New("validation error")
)

// ErrRateLimited is the cause of a KindNetwork error rejected by the client-side limiter.
var ErrRateLimited = errors.New("rate limit exceeded")

var kindSentinels = map[Kind]error{
	KindNetwork:      ErrNetwork,
	KindTimeout:      ErrTimeout,
	KindUnauthorized: ErrUnauthorized,
	KindForbidden:    ErrForbidden,
	KindNotFound:     ErrNotFound,
	KindServer:       ErrServer,
	KindValidation:   ErrValidation,
}

var defaultMessages = map[Kind]string{
	KindNetwork:      "network error",
	KindTimeout:      "request timed out",
	KindUnauthorized: "unauthorized",
	KindForbidden:    "access denied",
	KindNotFound:     "resource not found",
	KindServer:       "server error",
	KindValidation:   "invalid request",
}

// FieldError is one entry of the backend "errors" array.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Error is a failed request. Status is 0 for network and timeout failures.
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	Errors  []FieldError
	Body    any
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.Status)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Message, e.cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// KindOf returns the kind of err if it wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// kindForStatus maps a non-2xx status onto the taxonomy.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// usesFixedMessage reports whether the backend message is ignored for status.
func usesFixedMessage(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError:
		return true
	}
	return false
}

// DefaultMessage returns the fixed message used for k when the backend
// supplied none.
func DefaultMessage(k Kind) string {
	return defaultMessages[k]
}
