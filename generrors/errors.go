// Package generrors provides structured error types for oasforge.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of failures and map them to exit codes or recovery strategies.
//
// # Error Categories
//
//   - ParseError: malformed document syntax (YAML/JSON)
//   - ValidationError: document violates the OpenAPI object model
//   - ReferenceError: $ref resolution failures, including circular references
//   - NamingError: an identifier cannot be made valid or unique
//   - EmissionError: the IR is structurally inconsistent (internal invariant violation)
//   - ConfigError: invalid configuration or input options
//
// # Usage with errors.As
//
//	result, err := forge.Generate(forge.WithFilePath("api.yaml"))
//	if err != nil {
//	    var refErr *generrors.ReferenceError
//	    if errors.As(err, &refErr) {
//	        if refErr.IsCircular {
//	            // Handle a non-terminating reference specifically
//	        }
//	    }
//	}
package generrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates a specification validation failure.
	ErrValidation = errors.New("validation error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a non-terminating circular $ref.
	ErrCircularReference = errors.New("circular reference")

	// ErrPathTraversal indicates a path traversal attempt was blocked.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrNaming indicates an identifier could not be made valid or unique.
	ErrNaming = errors.New("naming error")

	// ErrEmission indicates the IR handed to the renderer is inconsistent.
	ErrEmission = errors.New("emission error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to parse an input document.
// This covers YAML/JSON deserialization errors and structural issues.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ValidationError represents a violation of the OpenAPI object model:
// a missing required field, an incompatible composition member, or a
// duplicate property declaration.
type ValidationError struct {
	// Path is the JSON pointer to the problematic node (e.g., "/paths/~1pets/get")
	Path string
	// Field is the specific field name with the issue
	Field string
	// Value is the problematic value (may be nil)
	Value any
	// Message describes the validation failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Field != "" {
		msg += "." + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ReferenceError represents a failure to resolve a $ref.
// This includes missing targets, unloadable external documents,
// non-terminating circular references, and path traversal attempts.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// RefType indicates the reference type: "local" or "file"
	RefType string
	// Path is the JSON pointer of the referencing node (empty if unknown)
	Path string
	// IsCircular is true if this error is due to a non-terminating circular reference
	IsCircular bool
	// IsPathTraversal is true if this error is due to a path traversal attempt
	IsPathTraversal bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	} else if e.IsPathTraversal {
		msg = "path traversal detected"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Path != "" {
		msg += " (referenced from " + e.Path + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference or ErrPathTraversal
// when the appropriate flags are set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	if target == ErrCircularReference && e.IsCircular {
		return true
	}
	if target == ErrPathTraversal && e.IsPathTraversal {
		return true
	}
	return false
}

// NamingError represents a failure to assign a valid, unique output
// identifier, such as an exhausted disambiguation strategy.
type NamingError struct {
	// Scope is the symbol scope in which the failure occurred ("types" or "operations")
	Scope string
	// Name is the base identifier that could not be disambiguated
	Name string
	// Path is the JSON pointer of the declaration that failed naming
	Path string
	// Message describes the naming failure
	Message string
}

// Error returns a human-readable error message.
func (e *NamingError) Error() string {
	msg := "naming error"
	if e.Scope != "" {
		msg += " in " + e.Scope + " scope"
	}
	if e.Name != "" {
		msg += " for " + e.Name
	}
	if e.Path != "" {
		msg += " (declared at " + e.Path + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as NamingError has no underlying cause.
func (e *NamingError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *NamingError) Is(target error) bool {
	return target == ErrNaming
}

// EmissionError represents a structurally inconsistent IR, such as a
// declaration referencing a symbol that was never assigned. This is an
// internal invariant violation: it is always fatal and never expected
// in correct operation.
type EmissionError struct {
	// Unit is the emission unit in which the inconsistency was found
	Unit string
	// Symbol is the offending symbol, if known
	Symbol string
	// Message describes the inconsistency
	Message string
}

// Error returns a human-readable error message.
func (e *EmissionError) Error() string {
	msg := "emission error"
	if e.Unit != "" {
		msg += " in unit " + e.Unit
	}
	if e.Symbol != "" {
		msg += " for symbol " + e.Symbol
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as EmissionError has no underlying cause.
func (e *EmissionError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *EmissionError) Is(target error) bool {
	return target == ErrEmission
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
