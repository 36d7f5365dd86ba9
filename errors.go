package docbind

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// Remote errors
	ErrNotFound           = errors.New("document not found")
	ErrSchemaMissing      = errors.New("index has no schema")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrRequestFailed      = errors.New("request failed")

	// Template errors
	ErrUnresolvedParam = errors.New("unresolved template parameter")
	ErrBadTemplate     = errors.New("malformed index template")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FieldError reports a read of a field that is not present in a document.
// It carries the model kind and the field name so callers can tell which
// lookup failed.
type FieldError struct {
	Kind  string
	Field string
}

func (e *FieldError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("document has no field %q", e.Field)
	}
	return fmt.Sprintf("%s has no field %q", e.Kind, e.Field)
}

// ErrorWithContext adds additional context to errors for better debugging and logging
type ErrorWithContext struct {
	Err     error
	Context map[string]interface{}
}

func (e *ErrorWithContext) Error() string {
	if len(e.Context) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (context: %+v)", e.Err, e.Context)
}

func (e *ErrorWithContext) Unwrap() error {
	return e.Err
}

// WithContext adds context to an error
func WithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{
		Err:     err,
		Context: context,
	}
}

// Common error checking helpers

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSchemaMissing checks if an error is the schema-provisioning condition.
// This is the only remote failure the library recovers from, and it is
// recovered exactly once per operation.
func IsSchemaMissing(err error) bool {
	return errors.Is(err, ErrSchemaMissing)
}

// IsFieldMissing checks if an error is a missing-field read on a document
func IsFieldMissing(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
