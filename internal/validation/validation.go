// Package validation contains the logic for validating
// payloads before they reach the database.
//
// It uses the `validator` library to enforce rules (like
// required fields or maximum lengths) defined in struct tags
// and converts validation errors into errs.FieldError values.
package validation
