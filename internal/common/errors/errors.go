// Package errors provides standardized error handling for the eligibility engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller errors: malformed input shape, never retried by this engine.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// Unknown scheme id passed to the checklist builder.
	ErrCodeSchemeNotFound ErrorCode = "SCHEME_NOT_FOUND"

	// Partial-result state: narrative rules or evaluation timeouts prevented
	// a definite answer. Not a true failure.
	ErrCodeUndeterminedEligibility ErrorCode = "UNDETERMINED_ELIGIBILITY"

	// Reasoning collaborator errors, recovered locally by marking the
	// affected criterion undetermined.
	ErrCodeReasoningTimeout     ErrorCode = "EXTERNAL_REASONING_TIMEOUT"
	ErrCodeReasoningUnavailable ErrorCode = "REASONING_UNAVAILABLE"

	// No catalog snapshot published: fatal for the request.
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"

	// Ingestion-time failures.
	ErrCodeCatalogValidationFailed ErrorCode = "CATALOG_VALIDATION_FAILED"
	ErrCodeDocumentCycleDetected   ErrorCode = "DOCUMENT_CYCLE_DETECTED"
	ErrCodeSourceQueryFailed       ErrorCode = "SOURCE_QUERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable caller error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemeNotFoundError creates a non-retryable unknown-scheme error.
func NewSchemeNotFoundError(schemeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemeNotFound,
		Message:   "Scheme not found in catalog",
		Details:   fmt.Sprintf("schemeId: %s", schemeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUndeterminedEligibilityError marks a partial result, surfaced alongside
// the schemes that could be evaluated.
func NewUndeterminedEligibilityError(schemeID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUndeterminedEligibility,
		Message:   "Eligibility could not be fully determined",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"schemeId": schemeID},
		Timestamp: time.Now().UTC(),
	}
}

// NewReasoningTimeoutError creates a retryable collaborator timeout error.
func NewReasoningTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeReasoningTimeout,
		Message:   "External reasoning call timed out",
		Details:   "call exceeded the configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReasoningUnavailableError creates a retryable collaborator error.
func NewReasoningUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReasoningUnavailable,
		Message:   "External reasoning collaborator error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError creates the fatal no-snapshot error.
func NewCatalogUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "No scheme catalog snapshot available",
		Details:   "ingestion has not published a snapshot yet",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogValidationFailedError creates a non-retryable ingestion error.
func NewCatalogValidationFailedError(schemeID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogValidationFailed,
		Message:   "Scheme definition failed validation",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"schemeId": schemeID},
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentCycleError creates a non-retryable ingestion error for cyclic
// document alternatives.
func NewDocumentCycleError(schemeID, documentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentCycleDetected,
		Message:   "Document alternatives form a cycle",
		Details:   fmt.Sprintf("schemeId: %s, documentId: %s", schemeID, documentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceQueryFailedError creates a retryable ingestion source error.
func NewSourceQueryFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceQueryFailed,
		Message:   fmt.Sprintf("Catalog source '%s' query error", source),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeReasoningUnavailable, ErrCodeSourceQueryFailed:
		return 3
	case ErrCodeReasoningTimeout:
		return 2
	default:
		return 0 // caller and partial-result errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// CodeOf extracts the ErrorCode from err, or "" when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
