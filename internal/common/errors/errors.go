// Package errors provides standardized error handling for the notification engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDeliveryFailed       ErrorCode = "DELIVERY_FAILED"
	ErrCodeTransportUnavailable ErrorCode = "TRANSPORT_UNAVAILABLE"
	ErrCodeUnknownNotification  ErrorCode = "UNKNOWN_NOTIFICATION_TYPE"
	ErrCodeInvalidRecipient     ErrorCode = "INVALID_RECIPIENT"
	ErrCodeSettingsLookupFailed ErrorCode = "SETTINGS_LOOKUP_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the original error for errors.Is/errors.As chains.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewDeliveryFailedError wraps a transport failure. Message carries the
// classified, user-facing explanation; the raw error stays reachable via
// Unwrap for diagnostics.
func NewDeliveryFailedError(userMessage string, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   userMessage,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewTransportUnavailableError signals that no transport could be constructed
// at all. Fatal to the call, never to the process.
func NewTransportUnavailableError(cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeTransportUnavailable,
		Message:   "Email transport could not be constructed from the current mail settings",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewUnknownNotificationError creates a non-retryable catalog miss error.
func NewUnknownNotificationError(notificationType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownNotification,
		Message:   "Unknown notification type",
		Details:   fmt.Sprintf("type: %s", notificationType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRecipientError creates a non-retryable recipient validation error.
func NewInvalidRecipientError(recipient string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRecipient,
		Message:   "Invalid recipient email address",
		Details:   fmt.Sprintf("recipient: %s", recipient),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSettingsLookupFailedError creates a retryable settings store error.
func NewSettingsLookupFailedError(key string, cause error) *StandardError {
	details := fmt.Sprintf("key: %s", key)
	if cause != nil {
		details = fmt.Sprintf("key: %s, error: %s", key, cause.Error())
	}
	return &StandardError{
		Code:      ErrCodeSettingsLookupFailed,
		Message:   "Settings store lookup failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsDeliveryFailure reports whether err is (or wraps) a classified delivery failure.
func IsDeliveryFailure(err error) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == ErrCodeDeliveryFailed
}

// IsTransportUnavailable reports whether err is (or wraps) a transport construction failure.
func IsTransportUnavailable(err error) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == ErrCodeTransportUnavailable
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DELIVERY") || strings.Contains(codeStr, "TRANSPORT"):
		return "DELIVERY"
	case strings.Contains(codeStr, "SETTINGS"):
		return "SETTINGS"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
