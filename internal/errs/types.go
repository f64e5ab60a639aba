package errs

import (
	"errors"
	"strings"
)

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "code", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Kind is a string-based enum classifying an Error.
type Kind string

const (
	// KindInvalid means the input was rejected, either by validation or by
	// a constraint in the store.
	KindInvalid Kind = "invalid"

	// KindNotFound means the addressed row does not exist.
	KindNotFound Kind = "not_found"

	// KindConflict means the write collides with an existing row.
	KindConflict Kind = "conflict"

	// KindInternal covers everything else (connection failures, bugs).
	KindInternal Kind = "internal"
)

// Error is the main custom error type.
//
// Fields:
//   - Kind: category callers can switch on.
//   - Code: machine-friendly code (e.g. "DEPARTMENT_NOT_FOUND").
//   - Message: human-friendly message.
//   - Errors: per-field errors (validation).
//   - Err: the underlying cause, if any.
type Error struct {
	Kind    Kind         `json:"kind"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// Error returns the message, so printing the error shows it directly.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is also an *Error.
//
// It does not compare Kind or Code; use KindOf for that.
func (e *Error) Is(target error) bool {
	_, ok := target.(*Error)
	return ok
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err carries KindNotFound.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
// Example:
//
//	"not found" -> "NOT_FOUND"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
