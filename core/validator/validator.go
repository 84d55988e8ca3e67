package validator

import (
	"appointment-scheduler/core/controller"
)

// ValidationResult collects field errors for a request.
type ValidationResult struct {
	Errors []controller.ValidationError `json:"errors"`
}

func New() *ValidationResult {
	return &ValidationResult{Errors: []controller.ValidationError{}}
}

func (v *ValidationResult) AddError(field, message string) {
	v.Errors = append(v.Errors, controller.NewValidationError(field, message))
}

func (v *ValidationResult) HasError() bool {
	return len(v.Errors) > 0
}

// Message returns the first error message, or "" when valid.
func (v *ValidationResult) Message() string {
	if len(v.Errors) == 0 {
		return ""
	}
	return v.Errors[0].Message
}
