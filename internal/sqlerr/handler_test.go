package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/deppfellow/catalog-smoke/internal/errs"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestHandleErrorPgErrors(t *testing.T) {
	tests := []struct {
		name       string
		in         *pgconn.PgError
		wantKind   errs.Kind
		wantCode   string
		wantMsg    string
		wantFields []errs.FieldError
	}{
		{
			name: "missing department on subject insert",
			in: &pgconn.PgError{
				Severity:       "ERROR",
				Code:           pgerrcode.ForeignKeyViolation,
				TableName:      "subjects",
				ConstraintName: "subjects_department_id_fkey",
			},
			wantKind: errs.KindInvalid,
			wantCode: "DEPARTMENT_NOT_FOUND",
			wantMsg:  "The referenced Department does not exist",
		},
		{
			name:     "connection lost mid statement",
			in:       &pgconn.PgError{Severity: "FATAL", Code: pgerrcode.ConnectionFailure, Message: "connection failure"},
			wantKind: errs.KindInternal,
			wantCode: "DATABASE_UNAVAILABLE",
			wantMsg:  "The database connection failed",
		},
		{
			name:     "schema not migrated",
			in:       &pgconn.PgError{Severity: "ERROR", Code: pgerrcode.UndefinedTable, Message: `relation "departments" does not exist`},
			wantKind: errs.KindInternal,
			wantCode: "SCHEMA_MISSING",
			wantMsg:  "The catalog tables do not exist; apply the migrations",
		},
		{
			name: "duplicate department code",
			in: &pgconn.PgError{
				Severity:       "ERROR",
				Code:           pgerrcode.UniqueViolation,
				TableName:      "departments",
				ConstraintName: "departments_code_key",
			},
			wantKind: errs.KindConflict,
			wantCode: "DEPARTMENT_ALREADY_EXISTS",
			wantMsg:  "A Department with this Code already exists",
		},
		{
			name: "missing subject name",
			in: &pgconn.PgError{
				Severity:   "ERROR",
				Code:       pgerrcode.NotNullViolation,
				TableName:  "subjects",
				ColumnName: "name",
			},
			wantKind:   errs.KindInvalid,
			wantCode:   "SUBJECT_REQUIRED",
			wantMsg:    "The Name is required",
			wantFields: []errs.FieldError{{Field: "name", Error: "is required"}},
		},
		{
			name: "check constraint",
			in: &pgconn.PgError{
				Severity:   "ERROR",
				Code:       pgerrcode.CheckViolation,
				TableName:  "departments",
				ColumnName: "code",
			},
			wantKind: errs.KindInvalid,
			wantCode: "DEPARTMENT_INVALID",
			wantMsg:  "The Code value does not meet required conditions",
		},
		{
			name:     "unknown sqlstate",
			in:       &pgconn.PgError{Severity: "ERROR", Code: pgerrcode.DivisionByZero, Message: "division by zero"},
			wantKind: errs.KindInternal,
			wantCode: "INTERNAL_ERROR",
			wantMsg:  "internal error: ERROR 22012: division by zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleError(fmt.Errorf("insert: %w", tt.in))

			var got *errs.Error
			if !errors.As(err, &got) {
				t.Fatalf("HandleError() = %T, want *errs.Error", err)
			}
			if got.Kind != tt.wantKind || got.Code != tt.wantCode || got.Message != tt.wantMsg {
				t.Errorf("got (%s, %s, %q), want (%s, %s, %q)",
					got.Kind, got.Code, got.Message, tt.wantKind, tt.wantCode, tt.wantMsg)
			}
			if diff := cmp.Diff(tt.wantFields, got.Errors); diff != "" {
				t.Errorf("field errors mismatch (-want +got):\n%s", diff)
			}

			var pgerr *pgconn.PgError
			if !errors.As(err, &pgerr) {
				t.Error("driver error should stay reachable through the chain")
			}
		})
	}
}

func TestHandleErrorNoRows(t *testing.T) {
	err := HandleError(WithTable("subjects", pgx.ErrNoRows))

	var got *errs.Error
	if !errors.As(err, &got) {
		t.Fatalf("HandleError() = %T, want *errs.Error", err)
	}
	if got.Kind != errs.KindNotFound || got.Code != "SUBJECT_NOT_FOUND" || got.Message != "Subject not found" {
		t.Errorf("unexpected error: %+v", got)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Error("not found error should unwrap to pgx.ErrNoRows")
	}

	generic := HandleError(pgx.ErrNoRows)
	if !errs.IsNotFound(generic) || generic.Error() != "Resource not found" {
		t.Errorf("untagged ErrNoRows = %v", generic)
	}
}

func TestHandleErrorRestrictedDelete(t *testing.T) {
	// The server message is localised; only the statement kind decides.
	referenced := &pgconn.PgError{
		Severity:       "FEHLER",
		Code:           pgerrcode.ForeignKeyViolation,
		Message:        `Aktualisieren oder Löschen in Tabelle »departments« verletzt Fremdschlüssel-Constraint »subjects_department_id_fkey« von Tabelle »subjects«`,
		TableName:      "subjects",
		ConstraintName: "subjects_department_id_fkey",
	}

	var got *errs.Error
	if !errors.As(HandleError(WithDelete("departments", referenced)), &got) {
		t.Fatal("HandleError() did not return *errs.Error")
	}
	if got.Kind != errs.KindConflict || got.Code != "DEPARTMENT_IN_USE" ||
		got.Message != "The Department is still referenced by a Subject" {
		t.Errorf("delete mapping = (%s, %s, %q)", got.Kind, got.Code, got.Message)
	}

	if !errors.As(HandleError(WithTable("subjects", referenced)), &got) {
		t.Fatal("HandleError() did not return *errs.Error")
	}
	if got.Kind != errs.KindInvalid || got.Code != "DEPARTMENT_NOT_FOUND" {
		t.Errorf("insert mapping = (%s, %s)", got.Kind, got.Code)
	}
}

func TestHandleErrorKeepsTableTagPrivate(t *testing.T) {
	cause := errors.New("conn closed")

	got := HandleError(WithTable("subjects", cause))
	if errs.KindOf(got) != errs.KindInternal || !errors.Is(got, cause) {
		t.Fatalf("HandleError() = %v, want internal wrapping the cause", got)
	}
	if got.Error() != "internal error: conn closed" {
		t.Errorf("message = %q", got.Error())
	}

	if WithTable("subjects", nil) != nil || WithDelete("subjects", nil) != nil {
		t.Error("tagging nil should stay nil")
	}
}

func TestHandleErrorPassThrough(t *testing.T) {
	if HandleError(nil) != nil {
		t.Error("HandleError(nil) should be nil")
	}

	orig := errs.NewNotFoundError("Department not found", nil)
	if got := HandleError(orig); got != error(orig) {
		t.Errorf("HandleError re-wrapped an *errs.Error: %v", got)
	}

	cause := errors.New("dial tcp: connection refused")
	got := HandleError(cause)
	if errs.KindOf(got) != errs.KindInternal || !errors.Is(got, cause) {
		t.Errorf("unexpected mapping for plain error: %v", got)
	}
}

func TestMapCode(t *testing.T) {
	tests := map[string]Code{
		pgerrcode.UniqueViolation:                         UniqueViolation,
		pgerrcode.ForeignKeyViolation:                     ForeignKeyViolation,
		pgerrcode.UndefinedTable:                          UndefinedTable,
		pgerrcode.ConnectionFailure:                       ConnectionFailure,
		pgerrcode.SQLClientUnableToEstablishSQLConnection: ConnectionFailure,
		pgerrcode.InternalError:                           Other,
	}
	for in, want := range tests {
		if got := MapCode(in); got != want {
			t.Errorf("MapCode(%q) = %s, want %s", in, got, want)
		}
	}
	if got := MapSeverity("bogus"); got != SeverityError {
		t.Errorf("MapSeverity(bogus) = %s", got)
	}
}

func TestExtractColumns(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{extractColumnForUniqueViolation, "departments_code_key", "code"},
		{extractColumnForUniqueViolation, "unique_subjects_code", "code"},
		{extractColumnForUniqueViolation, "", ""},
		{extractColumnForForeignKeyViolation, "subjects_department_id_fkey", "department_id"},
		{extractColumnForForeignKeyViolation, "fk_custom", ""},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("extract(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
