package errs

// NewInvalidError creates a KindInvalid error.
//
// code is optional; nil defaults to "INVALID". errors carries optional
// field-level details.
func NewInvalidError(message string, code *string, errors []FieldError) *Error {
	return &Error{
		Kind:    KindInvalid,
		Code:    codeOr(code, KindInvalid),
		Message: message,
		Errors:  errors,
	}
}

// NewNotFoundError creates a KindNotFound error.
func NewNotFoundError(message string, code *string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    codeOr(code, KindNotFound),
		Message: message,
	}
}

// NewConflictError creates a KindConflict error.
func NewConflictError(message string, code *string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    codeOr(code, KindConflict),
		Message: message,
	}
}

// NewInternalError wraps cause as a KindInternal error.
//
// The message is generic; the cause stays reachable through Unwrap and is
// what gets logged.
func NewInternalError(cause error) *Error {
	message := "internal error"
	if cause != nil {
		message = "internal error: " + cause.Error()
	}
	return &Error{
		Kind:    KindInternal,
		Code:    MakeUpperCaseWithUnderscores("internal error"),
		Message: message,
		Err:     cause,
	}
}

func codeOr(code *string, kind Kind) string {
	if code != nil {
		return *code
	}
	return MakeUpperCaseWithUnderscores(string(kind))
}
