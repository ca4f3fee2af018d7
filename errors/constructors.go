package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *TableError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *TableError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// EndpointMissing creates an error for a missing backend endpoint.
// The realtime connection cannot be established without backend.url,
// so callers should treat this as fatal.
func EndpointMissing() *TableError {
	return New(ErrCodeEndpointMissing,
		"backend endpoint is not configured: set backend.url in table.yml or the TABLE_BACKEND_URL environment variable")
}

// ConnectFailed creates a connection failure error for a single attempt
func ConnectFailed(endpoint string, attempt int, err error) *TableError {
	return Wrap(err, ErrCodeConnectFailed,
		fmt.Sprintf("failed to connect to %s (attempt %d)", endpoint, attempt)).
		WithDetail("endpoint", endpoint).
		WithDetail("attempt", attempt)
}

// RetriesExhausted creates an error for an exhausted reconnection budget
func RetriesExhausted(endpoint string, attempts int) *TableError {
	return New(ErrCodeRetriesExhausted,
		fmt.Sprintf("unable to reach %s after %d attempts; refresh or check the backend", endpoint, attempts)).
		WithDetail("endpoint", endpoint).
		WithDetail("attempts", attempts)
}

// EmitOffline creates a non-fatal error for an emit attempted while disconnected.
// The message is dropped, not queued.
func EmitOffline(event string) *TableError {
	return New(ErrCodeEmitOffline, fmt.Sprintf("dropped %q: not connected", event)).
		WithDetail("event", event)
}

// APIFailed creates an error for a failed notification API request
func APIFailed(op string, err error) *TableError {
	return Wrap(err, ErrCodeAPIRequest, fmt.Sprintf("notification API %s failed", op)).
		WithDetail("operation", op)
}

// APIBadStatus creates an error for an unexpected HTTP status from the notification API
func APIBadStatus(op string, status int) *TableError {
	return New(ErrCodeAPIStatus, fmt.Sprintf("notification API %s returned status %d", op, status)).
		WithDetail("operation", op).
		WithDetail("status", status)
}

// NotificationNotFound creates an error for an unknown notification id
func NotificationNotFound(id string) *TableError {
	return New(ErrCodeNotificationNotFound, fmt.Sprintf("notification %q not found", id)).
		WithDetail("id", id)
}

// PayloadInvalid creates an error for an inbound payload that failed to decode
func PayloadInvalid(event string, err error) *TableError {
	return Wrap(err, ErrCodePayloadInvalid, fmt.Sprintf("invalid payload for %q", event)).
		WithDetail("event", event)
}
