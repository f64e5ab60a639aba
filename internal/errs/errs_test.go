package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsDefaultCodes(t *testing.T) {
	tests := []struct {
		err      *Error
		wantKind Kind
		wantCode string
	}{
		{NewInvalidError("bad", nil, nil), KindInvalid, "INVALID"},
		{NewNotFoundError("missing", nil), KindNotFound, "NOT_FOUND"},
		{NewConflictError("taken", nil), KindConflict, "CONFLICT"},
		{NewInternalError(errors.New("boom")), KindInternal, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.wantKind || tt.err.Code != tt.wantCode {
			t.Errorf("got (%s, %s), want (%s, %s)", tt.err.Kind, tt.err.Code, tt.wantKind, tt.wantCode)
		}
	}

	code := "DEPARTMENT_NOT_FOUND"
	if got := NewNotFoundError("missing", &code).Code; got != code {
		t.Errorf("custom code = %q, want %q", got, code)
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := NewNotFoundError("subject not found", nil)
	wrapped := fmt.Errorf("delete subject: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf() = %s, want not_found", got)
	}
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound() = false, want true")
	}
	if IsNotFound(nil) {
		t.Error("IsNotFound(nil) = true")
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain) = %s, want internal", got)
	}
	if !errors.Is(wrapped, &Error{}) {
		t.Error("errors.Is should match any *Error")
	}
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError(cause)

	if !errors.Is(err, cause) {
		t.Error("internal error should unwrap to its cause")
	}
	if err.Error() != "internal error: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}
