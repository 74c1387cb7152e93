package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound          = errors.New("domain: not found")
	ErrConflict          = errors.New("domain: conflict")
	ErrUnauthorized      = errors.New("domain: unauthorized")
	ErrForbidden         = errors.New("domain: forbidden")
	ErrValidation        = errors.New("domain: validation failed")
	ErrInvalidTransition = errors.New("ticket: invalid status transition")
	ErrInUse             = errors.New("domain: still referenced")
)

// FieldError reports a rejected input field. It wraps ErrValidation so
// callers can match on the sentinel while the API keeps the machine code.
type FieldError struct {
	Field string
	Code  string
	Msg   string
}

func (e *FieldError) Error() string {
	return "domain: " + e.Field + ": " + e.Msg
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for constructing a FieldError.
func Invalid(field, code, msg string) error {
	return &FieldError{Field: field, Code: code, Msg: msg}
}
