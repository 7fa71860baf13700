package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeProvider      = "PROVIDER_ERROR"
	ErrCodeStore         = "STORE_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Configuration errors (fatal, detected pre-flight)
var (
	ErrOverlapTooLarge  = NewDomainError(ErrCodeConfiguration, "chunk overlap must be smaller than chunk size")
	ErrInvalidChunkSize = NewDomainError(ErrCodeConfiguration, "chunk size must be positive")
)

// Validation errors (rejected before any network call)
var (
	ErrEmptyText   = NewDomainError(ErrCodeValidation, "text cannot be empty")
	ErrTextTooLong = NewDomainError(ErrCodeValidation, "text exceeds maximum embeddable length")
)

// NewProviderError wraps an embedding provider failure.
func NewProviderError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeProvider, message, err)
}

// NewStoreError wraps a vector store failure.
func NewStoreError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStore, message, err)
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsConfigurationError reports whether err carries CONFIGURATION_ERROR.
func IsConfigurationError(err error) bool { return hasCode(err, ErrCodeConfiguration) }

// IsValidationError reports whether err carries VALIDATION_ERROR.
func IsValidationError(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsProviderError reports whether err carries PROVIDER_ERROR.
func IsProviderError(err error) bool { return hasCode(err, ErrCodeProvider) }

// IsStoreError reports whether err carries STORE_ERROR.
func IsStoreError(err error) bool { return hasCode(err, ErrCodeStore) }
