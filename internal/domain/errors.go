package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable signals a network failure, timeout, exhausted queue or
	// non-success status from the language model.
	ErrModelUnavailable = errors.New("language model unavailable")
	// ErrModelResponseInvalid signals model output with no usable JSON object.
	ErrModelResponseInvalid = errors.New("language model response invalid")
	// ErrFieldValidation signals a single filter field outside its domain.
	ErrFieldValidation = errors.New("field validation failed")
	// ErrBudgetExceeded signals an exhausted model token budget.
	ErrBudgetExceeded = errors.New("model token budget exceeded")
	// ErrInvalidRequest signals bad search input (pagination bounds).
	ErrInvalidRequest = errors.New("invalid request")
)

// FieldError reports which field failed sanitization and the rejected raw value.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s=%q", ErrFieldValidation.Error(), e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrFieldValidation }

// NewFieldError creates a field validation error.
func NewFieldError(field, value string) error {
	return &FieldError{Field: field, Value: value}
}
