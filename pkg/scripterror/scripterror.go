package scripterror

import (
	"fmt"
	"runtime"
	"strings"
)

// Category classifies errors by their nature and appropriate handling
// strategy.
type Category int

const (
	// CategoryConfig represents errors in configuration supplied before any
	// parse: invalid dialect profiles, malformed delimiter definitions,
	// unreadable profile files. Fixable by correcting the configuration.
	CategoryConfig Category = iota

	// CategoryInput represents errors caused by the caller's input or
	// arguments, e.g. a file path that does not exist or a malformed
	// cursor offset handed to the CLI.
	CategoryInput

	// CategoryInternal represents errors that indicate a bug in this
	// module rather than in what the caller supplied.
	CategoryInternal
)

// Error is a structured error with a stable code, a category and
// optional context. Advisory parse findings (unterminated literals and
// blocks) are not Errors; they travel as diagnostics on the parsed
// script.
type Error struct {
	// Code is a unique identifier for this error type
	// (e.g. "DELIMITER_EMPTY", "DIALECT_UNKNOWN").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category Category

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific instance.
	// Example: the offending delimiter text or profile name.
	Detail string

	// Hint suggests how the caller might fix or work around this error.
	Hint string

	// Operation identifies what was being attempted when the error
	// occurred. Examples: "NewDelimiter", "LoadFile", "Lookup".
	Operation string

	// Cause is the underlying error, preserved for chain traversal.
	Cause error

	// Stack contains the call stack where this error was created.
	// Captured automatically in New() and Wrap().
	Stack []uintptr
}

// New creates a new Error with the specified category, code and message.
func New(category Category, code, message string) *Error {
	return &Error{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with module-specific context. If the
// error is already an *Error, it is enriched with the operation (only
// if not already set) rather than re-wrapped.
func Wrap(err error, code, operation string) *Error {
	if err == nil {
		return nil
	}

	if serr, ok := err.(*Error); ok {
		if serr.Operation == "" {
			serr.Operation = operation
		}
		return serr
	}

	return &Error{
		Code:      code,
		Category:  CategoryInternal,
		Message:   err.Error(),
		Operation: operation,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// WithDetail returns the error with instance-specific detail attached.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithHint returns the error with a remediation hint attached.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithOperation returns the error with the attempted operation recorded.
func (e *Error) WithOperation(op string) *Error {
	e.Operation = op
	return e
}

// captureStack captures the current call stack, skipping the first 3
// frames to exclude captureStack, New/Wrap and the immediate caller.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard error interface.
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation) caused by: underlying error
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s)", e.Operation))
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause, enabling errors.Is / errors.As
// traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// FormatStack returns a human-readable stack trace for debugging.
func (e *Error) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
