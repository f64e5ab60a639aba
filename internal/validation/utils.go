package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/catalog-smoke/internal/errs"
	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by payload types that know how to validate themselves.
//
// Typical pattern:
//   - Define a payload struct with validator tags (`validate:"required,max=16"`)
//   - Implement Validate() error that runs validator.Struct(p)
//   - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a validation issue that cannot be
// expressed with validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// Validate runs payload.Validate and, on failure, returns an *errs.Error
// of KindInvalid carrying one FieldError per failing field.
func Validate(payload Validatable) error {
	err := payload.Validate()
	if err == nil {
		return nil
	}

	fieldErrors := extractValidationError(err)
	if fieldErrors == nil {
		// Not a validation error at all (e.g. InvalidValidationError).
		return errs.NewInternalError(err)
	}

	return errs.NewInvalidError("Validation failed", nil, fieldErrors)
}

func extractValidationError(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		var msg string

		switch e.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if e.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", e.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", e.Param())
			}

		case "max":
			if e.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", e.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", e.Param())
			}

		case "gt":
			msg = fmt.Sprintf("must be greater than %s", e.Param())

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", e.Param())

		default:
			if e.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, e.Tag(), e.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, e.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return fieldErrors
}
