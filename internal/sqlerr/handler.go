package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/catalog-smoke/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	uniqueConstraintRe  = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
	foreignConstraintRe = regexp.MustCompile(`^(?:.+?)_([a-z0-9]+_id)_fkey$`)
)

// ConvertPgError converts a raw *pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// tableError records which table a statement addressed. Its message is
// the wrapped error's, so the tag never shows up in output.
type tableError struct {
	table    string
	deleting bool
	err      error
}

func (e *tableError) Error() string { return e.err.Error() }
func (e *tableError) Unwrap() error { return e.err }

// WithTable tags err with the table it came from so HandleError can name
// the entity in not-found messages.
func WithTable(table string, err error) error {
	if err == nil {
		return nil
	}
	return &tableError{table: table, err: err}
}

// WithDelete is WithTable for a DELETE statement. A foreign key violation
// on a delete means the row is still referenced, not that a parent is
// missing.
func WithDelete(table string, err error) error {
	if err == nil {
		return nil
	}
	return &tableError{table: table, deleting: true, err: err}
}

// internalError keeps the KindInternal classification but gives the
// failure its own code and message.
func internalError(code, message string, cause error) *errs.Error {
	e := errs.NewInternalError(cause)
	e.Code = code
	e.Message = message
	return e
}

// generateErrorCode creates application error codes of the form
// <DOMAIN>_<ACTION>, e.g. departments + UniqueViolation => DEPARTMENT_ALREADY_EXISTS.
func generateErrorCode(entity string, errType Code) string {
	if entity == "" {
		entity = "RECORD"
	}
	domain := strings.ToUpper(strings.ReplaceAll(entity, " ", "_"))

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage phrases a constraint failure for people.
func formatUserFriendlyMessage(sqlErr *Error, entityName string) string {
	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced by the column name when it can be inferred.
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing the request"
	}
}

// getEntityName infers an entity name from table/column data.
//
// Priority:
//  1. column ending in "_id" ("department_id" -> "Department")
//  2. table name, naively singularised ("subjects" -> "Subject")
//  3. "record"
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case ("first_name" -> "First Name").
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation infers the column from a unique
// constraint name. Supported conventions:
//
//	unique_<table>_<column>        unique_departments_code -> "code"
//	<table>_<column>_(key|ukey)    departments_code_key    -> "code"
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueConstraintRe.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// extractColumnForForeignKeyViolation infers the referencing column from
// the default Postgres foreign key name:
//
//	subjects_department_id_fkey -> "department_id"
func extractColumnForForeignKeyViolation(constraintName string) string {
	if matches := foreignConstraintRe.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// HandleError converts a low-level database error into an *errs.Error.
//
// Output:
//   - nil stays nil
//   - an *errs.Error is returned unchanged
//   - a *pgconn.PgError is mapped by constraint type; connection failures
//     and a missing table get their own internal codes
//   - pgx.ErrNoRows / sql.ErrNoRows become KindNotFound
//   - anything else becomes KindInternal wrapping the cause
//
// Repositories call this on every failed database call.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	var tagged *tableError
	errors.As(err, &tagged)

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			column := sqlErr.ColumnName
			if column == "" {
				column = extractColumnForForeignKeyViolation(sqlErr.ConstraintName)
			}
			entityName := getEntityName(sqlErr.TableName, column)

			// On a delete the violation comes from ON DELETE RESTRICT: the
			// deleted row is still referenced by sqlErr.TableName.
			if tagged != nil && tagged.deleting {
				deleted := getEntityName(tagged.table, "")
				referencing := getEntityName(sqlErr.TableName, "")
				code := strings.ToUpper(strings.ReplaceAll(deleted, " ", "_")) + "_IN_USE"
				e := errs.NewConflictError(fmt.Sprintf("The %s is still referenced by a %s", deleted, referencing), &code)
				e.Err = sqlErr
				return e
			}

			code := generateErrorCode(entityName, sqlErr.Code)
			e := errs.NewInvalidError(formatUserFriendlyMessage(sqlErr, entityName), &code, nil)
			e.Err = sqlErr
			return e

		case UniqueViolation:
			entityName := getEntityName(sqlErr.TableName, "")
			code := generateErrorCode(entityName, sqlErr.Code)
			message := formatUserFriendlyMessage(sqlErr, entityName)
			if column := extractColumnForUniqueViolation(sqlErr.ConstraintName); column != "" {
				message = strings.ReplaceAll(message, "identifier", humanizeText(column))
			}
			e := errs.NewConflictError(message, &code)
			e.Err = sqlErr
			return e

		case NotNullViolation:
			entityName := getEntityName(sqlErr.TableName, "")
			code := generateErrorCode(entityName, sqlErr.Code)
			fieldErrors := []errs.FieldError{
				{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"},
			}
			e := errs.NewInvalidError(formatUserFriendlyMessage(sqlErr, entityName), &code, fieldErrors)
			e.Err = sqlErr
			return e

		case CheckViolation:
			entityName := getEntityName(sqlErr.TableName, "")
			code := generateErrorCode(entityName, sqlErr.Code)
			e := errs.NewInvalidError(formatUserFriendlyMessage(sqlErr, entityName), &code, nil)
			e.Err = sqlErr
			return e

		case ConnectionFailure:
			return internalError("DATABASE_UNAVAILABLE", "The database connection failed", sqlErr)

		case UndefinedTable:
			return internalError("SCHEMA_MISSING", "The catalog tables do not exist; apply the migrations", sqlErr)

		default:
			return errs.NewInternalError(sqlErr)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		if tagged != nil {
			entityName := getEntityName(tagged.table, "")
			code := errs.MakeUpperCaseWithUnderscores(entityName + " not found")
			e := errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), &code)
			e.Err = err
			return e
		}
		e := errs.NewNotFoundError("Resource not found", nil)
		e.Err = err
		return e
	}

	return errs.NewInternalError(err)
}
