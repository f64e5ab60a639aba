// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the database driver and
// converts them into errs.Error values with readable messages
// (e.g. converting a "foreign key violation" into "The referenced
// Department does not exist").
package sqlerr
