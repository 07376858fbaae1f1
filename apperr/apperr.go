// Package apperr holds the typed, status-aware errors shared by all hawiya
// services. Handlers never build ad hoc error bodies: they return or wrap one
// of the sentinels below and let Payload render the client-facing shape.
package apperr

import (
	"errors"
	"net/http"
)

// Error is an application error carrying a stable machine code, an HTTP
// status, and optional field-level detail for validation failures.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Status  int            `json:"-"`
	Fields  map[string]any `json:"fields,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds a standalone error. Prefer the sentinels for anything that maps
// onto the standard taxonomy.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a cause to a copy of base, optionally overriding the message.
// The sentinel itself is never mutated.
func Wrap(err error, base *Error, message string) *Error {
	if err == nil {
		return nil
	}
	if base == nil {
		base = ErrStorage
	}
	clone := *base
	if message != "" {
		clone.Message = message
	}
	clone.Err = err
	return &clone
}

// WithMessage copies base with a caller-facing message.
func WithMessage(base *Error, message string) *Error {
	clone := *base
	clone.Message = message
	return &clone
}

// WithFields copies base and attaches per-field detail, used by the
// validation layer to report the first failing field.
func WithFields(base *Error, fields map[string]any) *Error {
	clone := *base
	clone.Fields = fields
	return &clone
}

// As unwraps err into an *Error if there is one anywhere in its chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// Status reports the HTTP status for err, defaulting to 500 for errors that
// did not originate in this package (storage failures, programming errors).
func Status(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Payload renders the JSON body sent to clients. Unknown errors are reported
// as a generic storage failure so internal details never leak.
func Payload(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	e, ok := As(err)
	if !ok {
		return map[string]any{"code": ErrStorage.Code, "message": "something went wrong"}
	}
	payload := map[string]any{"code": e.Code, "message": e.Error()}
	if len(e.Fields) > 0 {
		payload["fields"] = e.Fields
	}
	return payload
}

var (
	// ErrValidation reports malformed or out-of-policy input, with Fields
	// naming the first offending field.
	ErrValidation = New("validation_error", http.StatusBadRequest, "")

	// ErrInvalidCredentials is deliberately low-detail: unknown email, wrong
	// password, and passwordless accounts all surface this same error so a
	// caller cannot probe which emails are registered.
	ErrInvalidCredentials = New("invalid_credentials", http.StatusBadRequest, "invalid email or password")

	// ErrConflict reports a duplicate email or provider id.
	ErrConflict = New("conflict", http.StatusBadRequest, "user already exist")

	// ErrUnauthenticated covers a missing or unverifiable bearer token.
	ErrUnauthenticated = New("unauthorized", http.StatusUnauthorized, "")

	// ErrForbidden covers a valid token with insufficient privilege.
	ErrForbidden = New("forbidden", http.StatusForbidden, "you are not authorized to perform this action")

	ErrNotFound = New("not_found", http.StatusNotFound, "")
	ErrBadRequest = New("bad_request", http.StatusBadRequest, "")

	// ErrStorage wraps repository failures. Never retried here; the message
	// shown to clients stays generic.
	ErrStorage = New("database_error", http.StatusInternalServerError, "something went wrong")
)
