// Package errs defines the error types shared across the program.
//
// Its purpose is to give every failure a consistent shape: a kind that
// callers can switch on, a stable machine-readable code, a human message,
// optional field-level errors, and the wrapped cause.
//
// - Classify failures (invalid input, missing row, conflict, internal).
// - Support field-level validation errors for payloads.
// - Play nicely with Go's standard errors package (Is/As/Unwrap).
package errs
