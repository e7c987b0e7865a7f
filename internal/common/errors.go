package common

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration for configuration-related errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeValidation for validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStorage for storage/persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNetwork for network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeAuth for authentication/authorization errors
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeParsing for malformed or incomplete API documents
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeReference for unresolvable dropdown/tree references
	ErrorTypeReference ErrorType = "reference"
	// ErrorTypeExport for export sink errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeInternal for internal system errors
	ErrorTypeInternal ErrorType = "internal"
)

// ExporterError represents a structured error with context
type ExporterError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *ExporterError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ExporterError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *ExporterError) WithContext(key string, value interface{}) *ExporterError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *ExporterError) WithCause(cause error) *ExporterError {
	e.Cause = cause
	return e
}

// NewError creates a new ExporterError
func NewError(errorType ErrorType, code, message string) *ExporterError {
	return &ExporterError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *ExporterError {
	return NewError(ErrorTypeConfiguration, code, message)
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *ExporterError {
	return NewError(ErrorTypeValidation, code, message)
}

// NewStorageError creates a storage error
func NewStorageError(code, message string) *ExporterError {
	return NewError(ErrorTypeStorage, code, message)
}

// NewNetworkError creates a network error
func NewNetworkError(code, message string) *ExporterError {
	return NewError(ErrorTypeNetwork, code, message)
}

// NewAuthError creates an authentication error
func NewAuthError(code, message string) *ExporterError {
	return NewError(ErrorTypeAuth, code, message)
}

// NewParsingError creates a parsing error for a malformed API document
func NewParsingError(code, message string) *ExporterError {
	return NewError(ErrorTypeParsing, code, message)
}

// NewReferenceError creates an unresolvable-reference error
func NewReferenceError(code, message string) *ExporterError {
	return NewError(ErrorTypeReference, code, message)
}

// NewExportError creates an export sink error
func NewExportError(code, message string) *ExporterError {
	return NewError(ErrorTypeExport, code, message)
}

// NewInternalError creates an internal system error
func NewInternalError(code, message string) *ExporterError {
	return NewError(ErrorTypeInternal, code, message)
}

// WrapError wraps an existing error with ExporterError context
func WrapError(err error, errorType ErrorType, code, message string) *ExporterError {
	return &ExporterError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     err,
	}
}
