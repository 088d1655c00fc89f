package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Code is the machine readable error_code of an API error
type Code string

// API error codes
const (
	CodeInvalidRequest     Code = "INVALID_REQUEST"
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeInvalidParameter   Code = "INVALID_PARAMETER"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeExportNotFound     Code = "EXPORT_NOT_FOUND"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeDatasetUnavailable Code = "DATASET_UNAVAILABLE"
)

// problemType maps a code to its RFC 7807 type
func (c Code) problemType() string {
	switch c {
	case CodeInvalidRequest, CodeValidationFailed, CodeInvalidParameter:
		return TypeValidation
	case CodePayloadTooLarge:
		return TypePayloadTooLarge
	case CodeExportNotFound:
		return TypeNotFound
	case CodeRateLimitExceeded:
		return TypeRateLimit
	case CodeDatasetUnavailable:
		return TypeDatasetUnavailable
	}
	return TypeInternal
}

// APIError is an error carrying its HTTP status. The error handler renders
// it as a problem with error_code and details extensions.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  Code        `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, code Code, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  code,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, code Code, message string, details interface{}) *APIError {
	e := New(statusCode, code, message)
	e.Details = details
	return e
}

// ErrRateLimitExceeded is answered when the request rate limiter rejects a
// request
var ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

// InvalidRequestWithError reports a body that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// EmptyBodyError reports a request without the JSON body it needs
func EmptyBodyError() *APIError {
	return New(http.StatusBadRequest, CodeInvalidRequest, "Request body is empty")
}

// PayloadTooLargeError reports a body over limit bytes
func PayloadTooLargeError(limit int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		"Request body exceeds maximum allowed size", map[string]int64{"max_size": limit})
}

// InvalidParameterError reports a malformed query or path parameter
func InvalidParameterError(name, value string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidParameter,
		fmt.Sprintf("Invalid value for %s", name), ValidationError{Field: name, Message: fmt.Sprintf("%q is not valid", value)})
}

// ExportNotFoundError reports a table or chart name no export exists for
func ExportNotFoundError(name string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeExportNotFound, fmt.Sprintf("export %q not found", name), name)
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationErrors{Errors: errors})
}
