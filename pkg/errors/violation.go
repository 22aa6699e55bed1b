package errors

import "github.com/google/uuid"

// ConstraintViolation describes exactly which field(s) of which tenant
// sub-state broke an invariant, so controllers can attach the message at
// the right spot in the submitted form.
type ConstraintViolation struct {
	Fields   []string   `json:"fields"`
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
	Reason   string     `json:"reason"`
}

// NewConstraintViolation builds a CONFLICT error carrying the violation as
// structured details.
func NewConstraintViolation(message string, v ConstraintViolation) *Error {
	return New(CodeConflict, message).WithDetails(v)
}

// NewFieldValidation builds a VALIDATION_ERROR naming the offending fields.
func NewFieldValidation(message string, v ConstraintViolation) *Error {
	return New(CodeValidation, message).WithDetails(v)
}

// Violation extracts the ConstraintViolation details from an error, if any.
func Violation(err error) (ConstraintViolation, bool) {
	typed := As(err)
	if typed == nil {
		return ConstraintViolation{}, false
	}
	v, ok := typed.Details().(ConstraintViolation)
	return v, ok
}
