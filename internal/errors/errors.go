package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrorTypeInvalidInput covers malformed or unsupported request payloads.
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeModelUnavailable means the detection model is not ready.
	ErrorTypeModelUnavailable ErrorType = "model_unavailable"
	// ErrorTypeUpstream covers failures of a downstream collaborator (LLM, TTS).
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeValidation covers template/variable mismatches, a server-side
	// configuration class rather than bad user input.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound covers missing named resources (e.g. templates).
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInternal is the fallback class.
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type           ErrorType `json:"type"`
	Message        string    `json:"message"`
	Details        string    `json:"details,omitempty"`
	UpstreamStatus int       `json:"upstream_status,omitempty"`
	StatusCode     int       `json:"status_code"`
	Cause          error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInvalidInputError creates a client-correctable input error
func NewInvalidInputError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewModelUnavailableError signals the detection model is not loaded/reachable
func NewModelUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeModelUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// NewUpstreamError creates an error for a failed collaborator call.
// upstreamStatus is the collaborator's HTTP status when known, else 0.
func NewUpstreamError(message string, upstreamStatus int, cause error) *AppError {
	return &AppError{
		Type:           ErrorTypeUpstream,
		Message:        message,
		UpstreamStatus: upstreamStatus,
		StatusCode:     http.StatusBadGateway,
		Cause:          cause,
	}
}

// NewValidationError creates a server-side configuration mismatch error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewNotFoundError creates a missing-resource error
func NewNotFoundError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewInternalError creates a fallback internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
