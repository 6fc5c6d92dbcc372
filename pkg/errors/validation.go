package errors

import (
	stdErrors "errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FromValidation converts an ozzo-validation result into a VALIDATION_ERROR
// whose details map field names to messages. Nil stays nil.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if stdErrors.As(err, &internal) {
		return Wrap(CodeInternal, err, "validation rule failed")
	}
	var fields validation.Errors
	if stdErrors.As(err, &fields) {
		details := make(map[string]string, len(fields))
		for name, fieldErr := range fields {
			if fieldErr != nil {
				details[name] = fieldErr.Error()
			}
		}
		return New(CodeValidation, "validation failed").WithDetails(details)
	}
	return Wrap(CodeValidation, err, err.Error())
}
