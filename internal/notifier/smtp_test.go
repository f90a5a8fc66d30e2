package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"attendance-notifier/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMIMEMessageHTMLOnly(t *testing.T) {
	msg := &Message{
		From:      "Acme Corp <noreply@acme.test>",
		To:        "dana@example.com",
		Subject:   "Welcome",
		HTML:      "<p>hello</p>",
		MessageID: "<abc@smtp.acme.test>",
	}

	raw := buildMIMEMessage(msg)

	assert.Contains(t, raw, "From: Acme Corp <noreply@acme.test>\r\n")
	assert.Contains(t, raw, "To: dana@example.com\r\n")
	assert.Contains(t, raw, "Subject: Welcome\r\n")
	assert.Contains(t, raw, "Message-ID: <abc@smtp.acme.test>\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>hello</p>")
	assert.NotContains(t, raw, "multipart/alternative")
}

func TestBuildMIMEMessageMultipart(t *testing.T) {
	msg := &Message{
		From:    "noreply@acme.test",
		To:      "dana@example.com",
		Subject: "Welcome",
		HTML:    "<p>hello</p>",
		Text:    "hello",
	}

	raw := buildMIMEMessage(msg)

	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	// Plain part comes first so simple clients pick it last.
	assert.Less(t,
		strings.Index(raw, "text/plain"),
		strings.Index(raw, "text/html"))
}

func TestBuildMIMEMessageTextOnly(t *testing.T) {
	msg := &Message{
		From:    "noreply@acme.test",
		To:      "dana@example.com",
		Subject: "Plain",
		Text:    "just text",
	}

	raw := buildMIMEMessage(msg)

	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8\r\n\r\njust text")
	assert.NotContains(t, raw, "Message-ID:")
}

func TestBareAddress(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Acme Corp <noreply@acme.test>", "noreply@acme.test", false},
		{"noreply@acme.test", "noreply@acme.test", false},
		{"not an address", "", true},
	}

	for _, tc := range cases {
		got, err := bareAddress(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestSMTPConnectRespectsExpiredContext(t *testing.T) {
	transport := newSMTPTransport(TransportConfig{
		Host:        "smtp.example.com",
		Port:        587,
		SendTimeout: 30 * time.Second,
	}, logger.NewNoOpLogger())

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := transport.connect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}

func TestNewSMTPTransportDefaultsTimeout(t *testing.T) {
	transport := newSMTPTransport(TransportConfig{Host: "smtp.example.com"}, logger.NewNoOpLogger())
	assert.Equal(t, 30*time.Second, transport.cfg.SendTimeout)
}
