// Package errors provides the unified error type and factory functions for
// chargeview.  Every layer (viewer core, application services, infrastructure
// adapters, interfaces) uses AppError as the single carrier for structured
// error information, enabling consistent HTTP responses, CLI exit messages and
// log fields.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError: the canonical error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout chargeview.
// It satisfies the standard error interface and supports error wrapping so
// that errors.Is / errors.As / errors.Unwrap work across layers.
//
// Usage:
//
//	return errors.Precondition("no model loaded")
//	return errors.InvalidReference("unknown charge type id").WithDetail("typeId=4")
//	return errors.Wrap(err, errors.CodeFetchFailed, "download failed")
type AppError struct {
	// Code is the typed error code that identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (ids, counts, urls).
	Detail string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call stack captured at creation.  It is not part of
	// Error() output.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when empty.
func (e *AppError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), msg)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithDetailf is WithDetail with fmt.Sprintf formatting.
func (e *AppError) WithDetailf(format string, args ...interface{}) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil.
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved so the domain classification survives cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err's chain carries CodeNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsPrecondition reports whether err's chain carries CodePrecondition.
func IsPrecondition(err error) bool {
	return IsCode(err, CodePrecondition)
}

// IsInvalidReference reports whether err's chain carries CodeInvalidReference.
func IsInvalidReference(err error) bool {
	return IsCode(err, CodeInvalidReference)
}

// IsDataIntegrity reports whether err's chain carries CodeDataIntegrity.
func IsDataIntegrity(err error) bool {
	return IsCode(err, CodeDataIntegrity)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, CodeUnknown is returned.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories
// ─────────────────────────────────────────────────────────────────────────────

// Precondition constructs a CodePrecondition AppError.
func Precondition(message string) *AppError {
	return &AppError{Code: CodePrecondition, Message: message, Stack: captureStack(1)}
}

// InvalidReference constructs a CodeInvalidReference AppError.
func InvalidReference(message string) *AppError {
	return &AppError{Code: CodeInvalidReference, Message: message, Stack: captureStack(1)}
}

// DataIntegrity constructs a CodeDataIntegrity AppError.
func DataIntegrity(message string) *AppError {
	return &AppError{Code: CodeDataIntegrity, Message: message, Stack: captureStack(1)}
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: captureStack(1)}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: captureStack(1)}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Stack: captureStack(1)}
}

//Personal.AI order the ending
