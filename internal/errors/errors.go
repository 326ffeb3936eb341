package errors

import (
	"fmt"
)

// Error is the structured error type for PropSeek.
// It provides rich context for error handling, logging, and reporting.
type Error struct {
	// Code is the unique error code (e.g., "ERR_201_FETCH_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Source, Storage, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs,
	// e.g. the source location and chunk offset of a failed load.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if a manual retry of the operation is safe.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Newf creates a new Error with a formatted message and no cause.
func Newf(code string, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates an Error from an existing error.
// The existing error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// FetchFailed creates a source-transport error.
func FetchFailed(message string, cause error) *Error {
	return New(ErrCodeFetchFailed, message, cause)
}

// ArchiveEmpty creates an error for an archive with no contained table.
func ArchiveEmpty(message string) *Error {
	return New(ErrCodeArchiveEmpty, message, nil)
}

// LoadFailed creates a storage-fault error for a failed batch load.
func LoadFailed(message string, cause error) *Error {
	return New(ErrCodeLoadFailed, message, cause)
}

// QueryTooShort creates an error for a query below the minimum length.
func QueryTooShort(message string) *Error {
	return New(ErrCodeQueryTooShort, message, nil)
}

// NotFound creates an error for a missing record.
func NotFound(message string) *Error {
	return New(ErrCodeNotFound, message, nil)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is an Error with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*Error); ok {
		return pe.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the current ingestion run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*Error); ok {
		return pe.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an Error.
// Returns empty string if not an Error.
func GetCode(err error) string {
	if pe, ok := err.(*Error); ok {
		return pe.Code
	}
	return ""
}

// HasCode reports whether err or any error in its chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok && pe.Code == code {
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
