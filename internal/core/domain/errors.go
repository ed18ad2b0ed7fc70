package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an entity or upstream result is absent.
// The HTTP boundary maps it to 404.
var ErrNotFound = errors.New("not found")

// UpstreamError wraps an explicit error envelope or unexpected status
// returned by a third-party API. Mapped to 500 at the boundary; the
// original message stays server-side.
type UpstreamError struct {
	API     string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.API, e.Message)
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries a per-field error list for malformed input.
// Mapped to 400 at the boundary.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// Add appends a field error and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// Err returns nil if no field errors were collected.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
