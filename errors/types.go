package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"
	ErrCodeEndpointMissing  ErrorCode = "ENDPOINT_MISSING"

	// Realtime connection errors
	ErrCodeConnectFailed    ErrorCode = "CONNECT_FAILED"
	ErrCodeConnectTimeout   ErrorCode = "CONNECT_TIMEOUT"
	ErrCodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"
	ErrCodeEmitOffline      ErrorCode = "EMIT_OFFLINE"

	// Notification API errors
	ErrCodeAPIRequest           ErrorCode = "API_REQUEST_FAILED"
	ErrCodeAPIStatus            ErrorCode = "API_BAD_STATUS"
	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"

	// Payload errors
	ErrCodePayloadInvalid ErrorCode = "PAYLOAD_INVALID"

	// Identity errors
	ErrCodeIdentityInvalid ErrorCode = "IDENTITY_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// TableError represents a structured error with context
type TableError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *TableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TableError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *TableError) WithDetail(key string, value interface{}) *TableError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *TableError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new TableError
func New(code ErrorCode, message string) *TableError {
	return &TableError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a TableError
func Wrap(err error, code ErrorCode, message string) *TableError {
	return &TableError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific TableError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	tableErr, ok := err.(*TableError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return tableErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	tableErr, ok := err.(*TableError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return tableErr.Code
}
