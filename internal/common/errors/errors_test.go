package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryFailedErrorCarriesClassificationAndCause(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := NewDeliveryFailedError("The mail server refused the connection.", cause)

	assert.Equal(t, ErrCodeDeliveryFailed, err.Code)
	assert.Equal(t, "The mail server refused the connection.", err.Message)
	assert.Contains(t, err.Details, "connection refused")
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
}

func TestIsHelpersMatchWrappedErrors(t *testing.T) {
	delivery := fmt.Errorf("send welcome: %w", NewDeliveryFailedError("classified", nil))
	transport := fmt.Errorf("build: %w", NewTransportUnavailableError(stderrors.New("bad tls config")))

	assert.True(t, IsDeliveryFailure(delivery))
	assert.False(t, IsDeliveryFailure(transport))
	assert.True(t, IsTransportUnavailable(transport))
	assert.False(t, IsTransportUnavailable(delivery))
	assert.False(t, IsDeliveryFailure(stderrors.New("plain")))
}

func TestSettingsLookupFailedError(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewSettingsLookupFailedError("mail_config", cause)

	assert.Equal(t, ErrCodeSettingsLookupFailed, err.Code)
	assert.Contains(t, err.Details, "mail_config")
	assert.Contains(t, err.Details, "connection reset")
	assert.True(t, err.Retryable)
	require.ErrorIs(t, err, cause)
}

func TestValidationErrorsAreNotRetryable(t *testing.T) {
	assert.False(t, NewUnknownNotificationError("carrier-pigeon").Retryable)
	assert.False(t, NewInvalidRecipientError("no-at-sign").Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeDeliveryFailed, "DELIVERY"},
		{ErrCodeTransportUnavailable, "DELIVERY"},
		{ErrCodeSettingsLookupFailed, "SETTINGS"},
		{ErrCodeUnknownNotification, "VALIDATION"},
		{ErrCodeInvalidRecipient, "VALIDATION"},
		{ErrorCode("SOMETHING_ELSE"), "OTHER"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, GetErrorCategory(tc.code), string(tc.code))
	}
}
