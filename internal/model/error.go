package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every InputError.
var ErrInvalidInput = errors.New("invalid input")

// InputError reports a malformed value passed to a core computation.
type InputError struct {
	Field  string
	Value  any
	Reason string
}

// NewInputError builds an InputError for field.
func NewInputError(field string, value any, reason string) *InputError {
	return &InputError{Field: field, Value: value, Reason: reason}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %v: %s", ErrInvalidInput, e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// IsInputError returns the InputError in err's chain, or nil.
func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr
	}

	return nil
}
