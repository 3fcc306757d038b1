package services

import (
	"errors"
	"strings"
)

// ErrNoLineItems rejects an order request that binds no line item at all.
var ErrNoLineItems = errors.New("order must contain at least one line item")

// errNotFound aborts a transaction when the parent order (or activity) is
// absent. It never leaves the package: callers get (false, nil).
var errNotFound = errors.New("not found")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field-level problem of a request. It is
// returned before anything is written.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newValidationError(fields []FieldError, cause error) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields, cause: cause}
}
