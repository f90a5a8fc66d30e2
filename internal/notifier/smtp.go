package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"attendance-notifier/internal/common/logger"
)

// smtpTransport delivers mail over SMTP with an optional STARTTLS upgrade.
type smtpTransport struct {
	cfg    TransportConfig
	logger logger.Logger
}

func newSMTPTransport(cfg TransportConfig, log logger.Logger) *smtpTransport {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &smtpTransport{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"transport": "smtp"}),
	}
}

func (t *smtpTransport) Send(ctx context.Context, msg *Message) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if t.cfg.User != "" && t.cfg.Pass != "" {
		auth := smtp.PlainAuth("", t.cfg.User, t.cfg.Pass, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	fromAddr, err := bareAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid from address %q: %w", msg.From, err)
	}
	if err := client.Mail(fromAddr); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write([]byte(buildMIMEMessage(msg))); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (t *smtpTransport) Probe(ctx context.Context) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Quit()
}

// connect dials the server with a bounded timeout and performs the STARTTLS
// upgrade when the transport is configured as secure.
func (t *smtpTransport) connect(ctx context.Context) (*smtp.Client, error) {
	timeout := t.cfg.SendTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("context cancelled before dialing SMTP server: %w", ctx.Err())
	}

	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open SMTP session: %w", err)
	}

	if t.cfg.Secure {
		tlsConfig := &tls.Config{
			ServerName:         t.cfg.Host,
			InsecureSkipVerify: false,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	return client, nil
}

// buildMIMEMessage assembles the wire form of the message: headers plus a
// single-part or multipart/alternative body depending on what is present.
func buildMIMEMessage(msg *Message) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	if msg.MessageID != "" {
		builder.WriteString(fmt.Sprintf("Message-ID: %s\r\n", msg.MessageID))
	}
	builder.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case msg.HTML != "" && msg.Text != "":
		boundary := "alt-boundary-0"
		builder.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))
		builder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		builder.WriteString(msg.Text)
		builder.WriteString(fmt.Sprintf("\r\n--%s\r\n", boundary))
		builder.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		builder.WriteString(msg.HTML)
		builder.WriteString(fmt.Sprintf("\r\n--%s--\r\n", boundary))
	case msg.HTML != "":
		builder.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		builder.WriteString(msg.HTML)
	default:
		builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		builder.WriteString(msg.Text)
	}

	return builder.String()
}

// bareAddress extracts the address part from a possibly display-named
// sender like `Acme Corp <noreply@acme.com>`.
func bareAddress(from string) (string, error) {
	parsed, err := mail.ParseAddress(from)
	if err != nil {
		return "", err
	}
	return parsed.Address, nil
}
