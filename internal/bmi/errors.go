package bmi

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel behind every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationKind classifies why raw input was rejected.
type ValidationKind string

const (
	EmptyInput  ValidationKind = "empty_input"
	NotNumeric  ValidationKind = "not_numeric"
	NonPositive ValidationKind = "non_positive"
)

// Input field names used in ValidationError.Field.
const (
	FieldWeight = "weight"
	FieldHeight = "height"
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Value == "" {
		return fmt.Sprintf("validate %s: %s", e.Field, e.Kind)
	}
	return fmt.Sprintf("validate %s: %s (value=%q)", e.Field, e.Kind, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Title is the heading of the notice shown for this error.
func (e *ValidationError) Title() string {
	if e.Kind == EmptyInput {
		return "Input required"
	}
	return "Invalid input"
}

// Message is the user-facing sentence for this error.
func (e *ValidationError) Message() string {
	switch e.Kind {
	case EmptyInput:
		return "Please enter both weight and height."
	case NotNumeric:
		return "Please enter numeric values (e.g. 70 or 175)."
	case NonPositive:
		return "Values must be greater than zero."
	default:
		return "Invalid input."
	}
}
