package schemas

import (
	"fmt"
	"net/http"
)

// ErrorResponse represents a standard API error (RFC 7807).
// It implements the standard Go error interface.
type ErrorResponse struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"` // HTTP Status Code
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// Error implements the error interface.
// This allows ErrorResponse to be returned as a standard Go error.
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// NewErrorResponse creates a general ErrorResponse.
func NewErrorResponse(status int, title, detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     fmt.Sprintf("https://securepaytoprint.com/errors/%d", status),
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// --- Helper Constructors for Common HTTP Errors ---

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, "Bad Request", detail, instance)
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, "Not Found", detail, instance)
}

// NewConflictError creates a 409 Conflict error.
func NewConflictError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, "Conflict", detail, instance)
}

// NewPaymentRequiredError creates a 402 Payment Required error.
func NewPaymentRequiredError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusPaymentRequired, "Payment Required", detail, instance)
}

// NewUnsupportedMediaTypeError creates a 415 Unsupported Media Type error.
func NewUnsupportedMediaTypeError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusUnsupportedMediaType, "Unsupported Media Type", detail, instance)
}

// NewServiceUnavailableError creates a 503 Service Unavailable error.
// Used when the kiosk has been disabled by an administrator.
func NewServiceUnavailableError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, "Service Unavailable", detail, instance)
}

// NewInternalError creates a 500 Internal Server Error.
// Note: Be careful not to expose sensitive technical details in production.
func NewInternalError(detail, instance string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, "Internal Server Error", detail, instance)
}

// --- Domain-Specific Error Constructors ---

// PrinterBusyError creates a 409 Conflict error for an occupied printer.
// This is a specialized error for the print workflow.
func PrinterBusyError(detail, instance string) *ErrorResponse {
	return &ErrorResponse{
		Type:     "https://securepaytoprint.com/printer-busy",
		Title:    "Printer Busy",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: instance,
	}
}
