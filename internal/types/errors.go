// Package types provides common error types for proper error propagation
package types

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrorCode represents standardized error codes across the application
type ErrorCode string

const (
	ErrorCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeConflict         ErrorCode = "CONFLICT"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrorCodeStore            ErrorCode = "STORE_ERROR"
)

// ErrorSeverity indicates the severity of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// AppError represents a structured error with metadata
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Severity   ErrorSeverity          `json:"severity"`
	HTTPStatus int                    `json:"http_status"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`

	// Fields carries per-field messages for validation failures
	Fields map[string]string `json:"fields,omitempty"`

	Cause error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError by code, so errors.Is(err, &AppError{Code: ...}) works
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithField adds a field-level validation message
func (e *AppError) WithField(field, message string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Severity:   SeverityError,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewAppErrorWithCause creates an error with an underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, httpStatus int, cause error) *AppError {
	err := NewAppError(code, message, httpStatus)
	err.Cause = cause
	return err
}

// NewValidationError creates a validation error
func NewValidationError(message string, details ...string) *AppError {
	err := NewAppError(ErrorCodeValidation, message, http.StatusBadRequest)
	if len(details) > 0 {
		err.Details = details[0]
	}
	err.Severity = SeverityWarning
	return err
}

// NewFieldValidationError creates a validation error from field messages
func NewFieldValidationError(fields map[string]string) *AppError {
	err := NewValidationError("invalid input")
	for k, v := range fields {
		err.WithField(k, v)
	}
	return err
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *AppError {
	err := NewAppError(
		ErrorCodeNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
	).WithContext("resource", resource).WithContext("id", id)
	err.Severity = SeverityInfo
	return err
}

// NewPermissionDeniedError creates an error for an operator lacking a permission
func NewPermissionDeniedError(permission string) *AppError {
	err := NewAppError(ErrorCodePermissionDenied, "permission denied", http.StatusForbidden).
		WithContext("permission", permission)
	err.Severity = SeverityWarning
	return err
}

// NewUnauthorizedError creates an error for a missing or unknown credential
func NewUnauthorizedError() *AppError {
	err := NewAppError(ErrorCodeUnauthorized, "authentication required", http.StatusUnauthorized)
	err.Severity = SeverityWarning
	return err
}

// NewConflictError creates an error for a uniqueness violation
func NewConflictError(message string) *AppError {
	err := NewAppError(ErrorCodeConflict, message, http.StatusConflict)
	err.Severity = SeverityWarning
	return err
}

// NewStoreError wraps a persistence failure. It is fatal for the current
// request only.
func NewStoreError(operation string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeStore, "store operation failed", http.StatusInternalServerError, cause).
		WithContext("operation", operation)
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	err := NewAppErrorWithCause(ErrorCodeInternal, message, http.StatusInternalServerError, cause)
	err.Severity = SeverityCritical
	return err
}

// HasCode reports whether err is an *AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool { return HasCode(err, ErrorCodeNotFound) }

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool { return HasCode(err, ErrorCodeValidation) }

// IsPermissionDenied reports whether err is a PermissionDenied error
func IsPermissionDenied(err error) bool { return HasCode(err, ErrorCodePermissionDenied) }

// IsStoreError reports whether err is a StoreError
func IsStoreError(err error) bool { return HasCode(err, ErrorCodeStore) }
