package apperror

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream")
)

// FieldError describes one rejected input field. The JSON shape mirrors what
// API clients already parse: {"value": ..., "msg": "...", "param": "...", "location": "body"}.
type FieldError struct {
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

type AppError struct {
	Err     error        // actual error
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Fields  []FieldError // Optional: every rejected field (validation only)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing record. The message is returned to the client
// verbatim, e.g. "There is no profile for this user".
func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  []FieldError{{Msg: message, Param: field, Location: locationFor(field)}},
	}
}

// Invalid bundles several field errors into a single validation failure.
// The first field's message doubles as the error string.
func Invalid(fields []FieldError) *AppError {
	e := &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
	if len(fields) > 0 {
		e.Message = fields[0].Msg
		e.Field = fields[0].Param
	}
	return e
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream reports a non-success answer from a third-party API.
func Upstream(message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
	}
}

func locationFor(field string) string {
	if field == "" {
		return ""
	}
	return "body"
}
