// Package api provides error handling utilities for HTTP APIs
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/mantonx/moviecatalog/internal/types"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error   ErrorDetails `json:"error"`
	Success bool         `json:"success"`
}

// ErrorDetails contains detailed error information
type ErrorDetails struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Fields    map[string]string      `json:"fields,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// RespondWithError sends a structured error response. Errors that are not
// *types.AppError are reported as internal errors without leaking their text.
func RespondWithError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		appErr = types.NewInternalError("internal server error", err)
	}

	logError(appErr, c.Request.Method, c.Request.URL.Path, requestID)

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error: ErrorDetails{
			Code:      string(appErr.Code),
			Message:   appErr.Message,
			Details:   appErr.Details,
			Fields:    appErr.Fields,
			Context:   appErr.Context,
			RequestID: requestID,
		},
	})
}

// RespondWithValidationError sends a validation error response
func RespondWithValidationError(c *gin.Context, message string, details ...string) {
	RespondWithError(c, types.NewValidationError(message, details...))
}

// RespondWithNotFound sends a not found error response
func RespondWithNotFound(c *gin.Context, resource string, id string) {
	RespondWithError(c, types.NewNotFoundError(resource, id))
}

// logError logs the error with appropriate severity
func logError(err *types.AppError, method, path, requestID string) {
	fields := []interface{}{
		"error_code", err.Code,
		"error_message", err.Message,
		"method", method,
		"path", path,
		"request_id", requestID,
	}

	if err.Details != "" {
		fields = append(fields, "details", err.Details)
	}
	for k, v := range err.Context {
		fields = append(fields, k, v)
	}
	if err.Cause != nil {
		fields = append(fields, "cause", err.Cause.Error())
	}

	switch err.Severity {
	case types.SeverityCritical:
		logger.Error("critical error", fields...)
	case types.SeverityWarning:
		logger.Warn("request rejected", fields...)
	case types.SeverityInfo:
		logger.Debug("request failed", fields...)
	default:
		logger.Error("error occurred", fields...)
	}
}

// ErrorMiddleware recovers from panics and reports them as internal errors
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var err error
				switch v := r.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}

				appErr := types.NewInternalError("panic recovered", err)
				RespondWithError(c, appErr)
			}
		}()

		c.Next()
	}
}
