package domain

import (
	"fmt"
	"strings"
)

// Error codes for different failure scenarios
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeComputation    = "COMPUTATION_ERROR"
	ErrCodeClassification = "CLASSIFICATION_ERROR"
	ErrCodeDelivery       = "DELIVERY_ERROR"
	ErrCodeInternal       = "INTERNAL_SERVER_ERROR"
)

// FieldViolation represents a single input validation failure.
type FieldViolation struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (v *FieldViolation) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", v.Field, v.Message)
}

// NewFieldViolation creates a new FieldViolation
func NewFieldViolation(field, message string, value interface{}) *FieldViolation {
	return &FieldViolation{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ValidationErrors aggregates every violation found in a single validation
// pass. Callers surface the complete list so the clinician can correct the
// form in one round trip, not one field at a time.
type ValidationErrors struct {
	Violations []*FieldViolation `json:"violations"`
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("validation failed with %d violation(s): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}

// Add appends a violation.
func (e *ValidationErrors) Add(field, message string, value interface{}) {
	e.Violations = append(e.Violations, NewFieldViolation(field, message, value))
}

// HasViolations reports whether any violation was recorded.
func (e *ValidationErrors) HasViolations() bool {
	return len(e.Violations) > 0
}

// Fields returns the violated field names, for logging.
func (e *ValidationErrors) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}
