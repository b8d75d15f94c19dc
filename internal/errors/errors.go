// Package errors provides structured error types for the partitioning core.
// All errors include a category, code, and message for consistent matching
// with errors.Is across components.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies errors by the stage that raised them.
type Category string

const (
	// CategorySpec covers partition spec construction: builder-time name and
	// source column failures.
	CategorySpec Category = "SPEC"

	// CategoryValidation covers build-time checks of partition fields
	// against the source schema.
	CategoryValidation Category = "VALIDATION"

	// CategoryAccessor covers accessor compilation at key construction.
	CategoryAccessor Category = "ACCESSOR"

	// CategoryInternal covers defects that should not occur.
	CategoryInternal Category = "INTERNAL"
)

// Error codes for each category.
const (
	// Spec codes
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeEmptyName        = "EMPTY_NAME"
	CodeUnknownColumn    = "UNKNOWN_COLUMN"
	CodeUnknownTransform = "UNKNOWN_TRANSFORM"

	// Validation codes
	CodeNonPrimitiveSource    = "NON_PRIMITIVE_SOURCE"
	CodeIncompatibleTransform = "INCOMPATIBLE_TRANSFORM"
	CodeFieldIDOverflow       = "FIELD_ID_OVERFLOW"

	// Accessor codes
	CodeNoAccessor = "NO_ACCESSOR"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// Error is the structured error type used throughout the partitioning core.
// All failures at this layer are unrecoverable; retry belongs to the
// surrounding I/O layers.
type Error struct {
	Category Category
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new Error.
func New(category Category, code, message string) *Error {
	return &Error{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(category Category, code, message string, cause error) *Error {
	return &Error{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// GetCategory extracts the error category from an error chain. Returns empty
// string if the error is not an Error.
func GetCategory(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain. Returns empty string
// if the error is not an Error.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Convenience constructors for common errors.

func NewSpecError(code, message string) *Error {
	return New(CategorySpec, code, message)
}

func NewValidationError(code, message string) *Error {
	return New(CategoryValidation, code, message)
}

func NewAccessorError(code, message string) *Error {
	return New(CategoryAccessor, code, message)
}

func NewInternalError(message string, cause error) *Error {
	return Wrap(CategoryInternal, CodeUnexpected, message, cause)
}
