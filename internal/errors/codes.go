// Package errors provides structured error handling for PropSeek.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Source errors (fetch, archive)
//   - 3XX: Storage errors (record store, search index)
//   - 4XX: Request errors (query validation, lookups)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategorySource indicates archive download and extraction errors.
	CategorySource Category = "SOURCE"
	// CategoryStorage indicates record store and index errors.
	CategoryStorage Category = "STORAGE"
	// CategoryRequest indicates caller-input errors on the read path.
	CategoryRequest Category = "REQUEST"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the ingestion run must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates a single operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid  = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigNotFound = "ERR_102_CONFIG_NOT_FOUND"

	// Source errors (200-299)
	ErrCodeFetchFailed  = "ERR_201_FETCH_FAILED"
	ErrCodeArchiveEmpty = "ERR_202_ARCHIVE_EMPTY"

	// Storage errors (300-399)
	ErrCodeLoadFailed  = "ERR_301_LOAD_FAILED"
	ErrCodeStoreFailed = "ERR_302_STORE_FAILED"
	ErrCodeRunLocked   = "ERR_303_RUN_LOCKED"

	// Request errors (400-499)
	ErrCodeQueryTooShort = "ERR_401_QUERY_TOO_SHORT"
	ErrCodeNotFound      = "ERR_402_NOT_FOUND"
	ErrCodeInvalidInput  = "ERR_403_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategorySource
	case '3':
		return CategoryStorage
	case '4':
		return CategoryRequest
	default:
		return CategoryInternal
	}
}

// severityFromCode derives severity from error code.
// Source and storage failures abort an ingestion run; request errors
// are local to a single query.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategorySource, CategoryStorage:
		return SeverityFatal
	case CategoryRequest:
		return SeverityError
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether a manual retry of the operation is safe.
// Fetch failures are retryable because ingestion runs are idempotent;
// no retry loop exists inside this package.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeFetchFailed, ErrCodeRunLocked:
		return true
	default:
		return false
	}
}
