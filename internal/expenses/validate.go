package expenses

import (
	"household-expenses/internal/models"
	"household-expenses/internal/validation"
)

type (
	FieldError      = validation.FieldError
	ValidationError = validation.ValidationError
)

func fieldError(field, tag, message string) *ValidationError {
	return validation.Field("expense", field, tag, message)
}

// Validator checks expense records.
type Validator struct {
	v *validation.Validator
}

// NewValidator creates a Validator with English messages.
func NewValidator() *Validator {
	return &Validator{v: validation.New()}
}

// Record validates the required fields of r.
func (v *Validator) Record(r models.ExpenseRecord) error {
	return v.v.Struct("expense", r)
}
