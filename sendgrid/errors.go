package sendgrid

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredField indicates a required key was absent or null during decode.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrTypeMismatch indicates a key held a value of the wrong type during decode.
	ErrTypeMismatch = errors.New("type mismatch")
)

// MissingFieldError reports a required field that was not present in the wire tree.
// Field is the dotted path from the decoded root, e.g. "personalizations[0].to".
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("sendgrid: missing required field %q", e.Field)
}

// Is reports whether target is ErrMissingRequiredField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// TypeMismatchError reports a field whose wire value does not have the expected type.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("sendgrid: field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// Is reports whether target is ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
