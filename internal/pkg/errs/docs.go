// Package errs provides standardized error types for the dispatch engine.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping that is used throughout the application.
//
// Each error type follows the same shape:
//   - A sentinel error variable (e.g. ErrValueIsRequired) used with errors.Is
//   - A struct type carrying the error details
//   - Constructor functions with and without an underlying cause
//   - Error() and Unwrap() methods so the sentinel survives wrapping
//
// Handlers classify failures against the sentinels to pick HTTP status
// codes without inspecting error strings.
package errs
