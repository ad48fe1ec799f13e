package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input or schema
	ErrCatState      ErrorCategory = "state"      // State corruption/conflict
	ErrCatMigration  ErrorCategory = "migration"  // Schema migration failure
	ErrCatChecksum   ErrorCategory = "checksum"   // Checksum data missing
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category   ErrorCategory
	Code       string
	Message    string
	Suggestion string
	Cause      error
	Details    map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithSuggestion attaches the corrective command surfaced to the user.
func (e *DomainError) WithSuggestion(s string) *DomainError {
	e.Suggestion = s
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     code,
		Message:  message,
	}
}

// ErrState creates a state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatState,
		Code:     code,
		Message:  message,
	}
}

// ErrMigration creates a migration error.
func ErrMigration(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatMigration,
		Code:     code,
		Message:  message,
	}
}

// ErrChecksum creates a checksum error.
func ErrChecksum(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatChecksum,
		Code:     code,
		Message:  message,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// SuggestionFor extracts the corrective-command hint from an error, if any.
func SuggestionFor(err error) string {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Suggestion
	}
	return ""
}

// Predefined error codes
const (
	CodeStateCorrupt        = "STATE_CORRUPT"
	CodeInvalidStateSchema  = "INVALID_STATE_SCHEMA"
	CodeUnknownVersion      = "UNKNOWN_VERSION"
	CodeBackwardMigration   = "BACKWARD_MIGRATION"
	CodeMigrationStepFailed = "MIGRATION_STEP_FAILED"
	CodeMissingChecksumData = "MISSING_CHECKSUM_DATA"
	CodeUnknownStage        = "UNKNOWN_STAGE"
	CodeInvalidConfig       = "INVALID_CONFIG"
)
