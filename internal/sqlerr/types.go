package sqlerr

import (
	"fmt"

	"github.com/jackc/pgerrcode"
)

// Code is a driver-independent category for a database error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	ConnectionFailure   Code = "connection_failure"
	UndefinedTable      Code = "undefined_table"
)

// Severity mirrors the Postgres error severity levels.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalised database error.
//
// It keeps the original SQLSTATE and the schema metadata Postgres reports,
// and wraps the driver error so errors.As can still reach it.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a SQLSTATE to a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case pgerrcode.NotNullViolation:
		return NotNullViolation
	case pgerrcode.ForeignKeyViolation:
		return ForeignKeyViolation
	case pgerrcode.UniqueViolation:
		return UniqueViolation
	case pgerrcode.CheckViolation:
		return CheckViolation
	case pgerrcode.UndefinedTable:
		return UndefinedTable
	}
	if pgerrcode.IsConnectionException(sqlState) {
		return ConnectionFailure
	}
	return Other
}

// MapSeverity maps the severity string reported by Postgres to a Severity.
// Unknown values map to SeverityError.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}
