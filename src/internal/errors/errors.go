// Package errors provides domain-specific error types for apimanctl.
//
// This package defines structured errors with error codes, making it easier to handle
// and test different error conditions consistently across the application. The codes
// map one-to-one onto the failure classes an operator sees: a broken document
// (parse, placeholder, validation), a remote call that failed, or an entity that was
// not attempted because something it depends on failed.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeParse indicates malformed JSON or YAML in the declaration document.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodePlaceholder indicates a ${placeholder} that no source and no default could resolve.
	ErrCodePlaceholder ErrorCode = "PLACEHOLDER_ERROR"

	// ErrCodeValidation indicates one or more structural problems in the declaration.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeRemote indicates a failed call against the management API.
	ErrCodeRemote ErrorCode = "REMOTE_ERROR"

	// ErrCodeDependencySkipped marks an entity that was not attempted because a dependency failed.
	ErrCodeDependencySkipped ErrorCode = "DEPENDENCY_SKIPPED"

	// ErrCodeConfig indicates a tool settings error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// NewParseError creates a new document parse error.
func NewParseError(message string, cause error) *Error {
	return Wrap(ErrCodeParse, message, cause)
}

// NewPlaceholderError creates a new placeholder resolution error.
func NewPlaceholderError(message string, cause error) *Error {
	return Wrap(ErrCodePlaceholder, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewRemoteError creates a new management API error.
func NewRemoteError(message string, cause error) *Error {
	return Wrap(ErrCodeRemote, message, cause)
}

// NewDependencySkippedError creates a new dependency-skipped marker.
func NewDependencySkippedError(message string, cause error) *Error {
	return Wrap(ErrCodeDependencySkipped, message, cause)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
