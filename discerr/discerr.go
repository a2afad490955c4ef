// Package discerr provides structured error types for plugin discovery.
//
// This package defines the closed set of error codes a discovery attempt can
// fail with and a structured Error type that carries the package name, the
// failing operation, and the cause chain. It integrates with Go's standard
// errors package for error wrapping and unwrapping.
//
// Every code except CodeUnrecognizedImportSyntax aborts the whole package
// discovery; the caller is expected to fall back to the dynamic path.
package discerr

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for the static discovery pipeline. The set is closed: a new
// failure mode needs a new constant here, not an ad-hoc string.
const (
	// CodeSourceNotFound indicates the registration file is missing or
	// ambiguous (more than one candidate with no disambiguation rule).
	CodeSourceNotFound = "SOURCE_NOT_FOUND"

	// CodeRegistrationFunctionNotFound indicates the registration entry
	// point is absent from the located file.
	CodeRegistrationFunctionNotFound = "REGISTRATION_FUNCTION_NOT_FOUND"

	// CodeUnrecognizedImportSyntax indicates an import line the scanner
	// could not parse. Warning-level only: it never aborts discovery by
	// itself, unresolved symbols surface later as CodeUnresolvedSymbol.
	CodeUnrecognizedImportSyntax = "UNRECOGNIZED_IMPORT_SYNTAX"

	// CodeUnresolvedSymbol indicates a referenced identifier is not
	// importable from the file's import map.
	CodeUnresolvedSymbol = "UNRESOLVED_SYMBOL"

	// CodeRequiresRuntimeInspection indicates a value that depends on
	// information only obtainable by executing code.
	CodeRequiresRuntimeInspection = "REQUIRES_RUNTIME_INSPECTION"

	// CodeUnknownPluginKind indicates a constructor name outside the
	// closed discriminator mapping.
	CodeUnknownPluginKind = "UNKNOWN_PLUGIN_KIND"

	// CodeStructuralMatchToolFailure indicates the external extraction
	// helper failed, timed out, or produced malformed output.
	CodeStructuralMatchToolFailure = "STRUCTURAL_MATCH_TOOL_FAILURE"

	// CodeSchemaMismatch indicates the produced JSON disagrees with the
	// dynamic path's output for the same input. Validation-time only.
	CodeSchemaMismatch = "SCHEMA_MISMATCH"
)

// Error is a structured error type for discovery operations.
// It records which package and operation failed, carries a standard error
// code, and can wrap underlying errors.
type Error struct {
	// Package is the full plugin package name being discovered.
	Package string

	// Op is the specific operation that failed (e.g., "locate", "resolve").
	Op string

	// Code is one of the Code* constants.
	Code string

	// Message is a human-readable error message.
	Message string

	// Details contains additional context as key-value pairs.
	Details map[string]any

	// Cause is the underlying error that caused this error.
	Cause error
}

// New creates a new structured discovery error.
func New(pkg, op, code, message string) *Error {
	return &Error{
		Package: pkg,
		Op:      op,
		Code:    code,
		Message: message,
	}
}

// WithCause adds an underlying error to this error.
// It returns the same error instance for method chaining.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithDetails adds additional context to this error.
// It returns the same error instance for method chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("discovery")
	if e.Package != "" {
		fmt.Fprintf(&b, " [%s]", e.Package)
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " %s", e.Op)
	}
	fmt.Fprintf(&b, ": %s", e.Code)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As
// to traverse the chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target *Error with only
// a Code set acts as a code-level sentinel: errors.Is(err, &Error{Code: ...})
// matches any discovery error carrying that code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	if t.Package != "" && t.Package != e.Package {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return t.Code != "" || t.Package != "" || t.Op != ""
}

// CodeOf extracts the discovery error code from an error chain.
// Returns the empty string if the chain contains no *Error.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// TriggersFallback reports whether err should route the caller to the
// dynamic discovery path. Every structured discovery error does; import
// syntax warnings are never returned as errors in the first place.
func TriggersFallback(err error) bool {
	var de *Error
	return errors.As(err, &de)
}
