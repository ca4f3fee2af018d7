package errors

import (
	"fmt"
	"testing"
)

func TestTableError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeEndpointMissing, "endpoint missing")
	if err.Code != ErrCodeEndpointMissing {
		t.Errorf("expected code %s, got %s", ErrCodeEndpointMissing, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeConnectFailed, "connect failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeConnectFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeEndpointMissing) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("endpoint", "ws://localhost").WithDetail("attempt", 3)
	if detailed.Details["endpoint"] != "ws://localhost" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test RetriesExhausted
	err := RetriesExhausted("ws://api.example.com", 5)
	if err.Code != ErrCodeRetriesExhausted {
		t.Errorf("expected code %s, got %s", ErrCodeRetriesExhausted, err.Code)
	}
	if err.Details["attempts"] != 5 {
		t.Error("RetriesExhausted should include attempts detail")
	}

	// Test EmitOffline
	err = EmitOffline("order:new")
	if err.Code != ErrCodeEmitOffline {
		t.Errorf("expected code %s, got %s", ErrCodeEmitOffline, err.Code)
	}
	if err.Details["event"] != "order:new" {
		t.Error("EmitOffline should include event detail")
	}

	// Test APIBadStatus
	err = APIBadStatus("list", 503)
	if err.Code != ErrCodeAPIStatus {
		t.Errorf("expected code %s, got %s", ErrCodeAPIStatus, err.Code)
	}
	if err.Details["status"] != 503 {
		t.Error("APIBadStatus should include status detail")
	}
}
