package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance-notifier/internal/common/errors"
	"attendance-notifier/internal/common/logger"
	"attendance-notifier/internal/common/metrics"
	"attendance-notifier/internal/common/observability"

	"github.com/google/uuid"
)

// SettingsInvalidator busts cached settings entries when administrators
// change mail configuration. Optional; nil means no cache is in front of
// the settings store.
type SettingsInvalidator interface {
	Forget(ctx context.Context, keys ...string)
}

// Dependencies collects everything a Dispatcher needs.
type Dependencies struct {
	Resolver      *Resolver
	Loader        *Loader
	Manager       *Manager
	Invalidator   SettingsInvalidator
	Observability *observability.Observability
	Logger        logger.Logger
}

// Dispatcher is the engine's public entry point: it composes template
// resolution, rendering and transport delivery, and classifies failures into
// actionable errors. Safe for concurrent use.
type Dispatcher struct {
	resolver    *Resolver
	loader      *Loader
	manager     *Manager
	invalidator SettingsInvalidator
	obs         *observability.Observability
	logger      logger.Logger
}

func NewDispatcher(deps Dependencies) *Dispatcher {
	return &Dispatcher{
		resolver:    deps.Resolver,
		loader:      deps.Loader,
		manager:     deps.Manager,
		invalidator: deps.Invalidator,
		obs:         deps.Observability,
		logger:      deps.Logger.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Send resolves, renders and delivers one notification. It never retries;
// retry policy belongs to the caller, since notification types differ widely
// in how stale a retried message may be.
func (d *Dispatcher) Send(ctx context.Context, typ Type, recipient string, vars Variables) error {
	entry, ok := Lookup(typ)
	if !ok {
		return errors.NewUnknownNotificationError(string(typ))
	}
	if !isValidEmail(recipient) {
		return errors.NewInvalidRecipientError(recipient)
	}

	tmpl := d.resolver.Resolve(ctx, entry)
	identity := d.loader.OrganizationIdentity(ctx)
	rendered := Render(tmpl, vars, identity)

	msg := &Message{
		From:      d.fromAddress(ctx, identity),
		To:        recipient,
		Subject:   rendered.Subject,
		HTML:      rendered.Body,
		MessageID: d.newMessageID(ctx),
	}

	return d.deliver(ctx, string(typ), msg)
}

// SendRaw bypasses the template pipeline for fully custom content. The text
// part is optional; pass "" to send HTML only.
func (d *Dispatcher) SendRaw(ctx context.Context, recipient, subject, html, text string) error {
	if !isValidEmail(recipient) {
		return errors.NewInvalidRecipientError(recipient)
	}

	identity := d.loader.OrganizationIdentity(ctx)
	msg := &Message{
		From:      d.fromAddress(ctx, identity),
		To:        recipient,
		Subject:   subject,
		HTML:      html,
		Text:      text,
		MessageID: d.newMessageID(ctx),
	}

	return d.deliver(ctx, "raw", msg)
}

// TestConnection probes the configured mail server. Failures are reported
// as false, never as errors.
func (d *Dispatcher) TestConnection(ctx context.Context) bool {
	return d.manager.TestConnection(ctx)
}

// Refresh reloads mail settings and rebuilds the transport. Invoked when an
// administrator edits mail or identity settings.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	if d.invalidator != nil {
		d.invalidator.Forget(ctx,
			KeyMailConfig, KeyLegacyMailConfig,
			KeyCompanyName, KeySupportEmail, KeyLoginURL,
		)
	}
	resetSegmentCache()
	return d.manager.Refresh(ctx)
}

// ListNotificationTypes returns catalog metadata for the admin UI.
func (d *Dispatcher) ListNotificationTypes() []CatalogEntry {
	return ListTypes()
}

func (d *Dispatcher) deliver(ctx context.Context, typeLabel string, msg *Message) error {
	start := time.Now()
	err := d.manager.Deliver(ctx, msg)
	duration := time.Since(start)

	metrics.NotificationSendDuration.WithLabelValues(typeLabel).Observe(duration.Seconds())

	if err != nil {
		status := "failed"
		if errors.IsTransportUnavailable(err) {
			d.recordDispatch(ctx, typeLabel, status, duration)
			metrics.NotificationSendFailures.WithLabelValues(typeLabel, string(errors.ErrCodeTransportUnavailable)).Inc()
			d.logger.Error("no mail transport available", map[string]interface{}{
				"notificationType": typeLabel,
				"recipient":        msg.To,
				"category":         errors.GetErrorCategory(errors.ErrCodeTransportUnavailable),
				"error":            err.Error(),
			})
			return err
		}

		classified := Classify(err)
		d.recordDispatch(ctx, typeLabel, status, duration)
		metrics.NotificationSendFailures.WithLabelValues(typeLabel, string(errors.ErrCodeDeliveryFailed)).Inc()
		d.logger.Error("notification delivery failed", map[string]interface{}{
			"notificationType": typeLabel,
			"recipient":        msg.To,
			"messageId":        msg.MessageID,
			"category":         errors.GetErrorCategory(errors.ErrCodeDeliveryFailed),
			"classified":       classified,
			"error":            err.Error(),
		})
		return errors.NewDeliveryFailedError(classified, err)
	}

	metrics.NotificationSends.WithLabelValues(typeLabel).Inc()
	d.recordDispatch(ctx, typeLabel, "sent", duration)
	d.logger.Info("notification sent", map[string]interface{}{
		"notificationType": typeLabel,
		"recipient":        msg.To,
		"messageId":        msg.MessageID,
	})
	return nil
}

func (d *Dispatcher) recordDispatch(ctx context.Context, typeLabel, status string, duration time.Duration) {
	if d.obs == nil {
		return
	}
	d.obs.RecordDispatch(ctx, typeLabel, status)
	d.obs.RecordDispatchDuration(ctx, duration, status)
}

// fromAddress derives the sender: the configured from-address when present,
// otherwise "{companyName} <{fallback}>" where fallback is the transport
// user or, failing that, the support address.
func (d *Dispatcher) fromAddress(ctx context.Context, identity OrganizationIdentity) string {
	cfg := d.loader.TransportConfig(ctx)
	if cfg.FromAddress != "" {
		return cfg.FromAddress
	}
	fallback := cfg.User
	if fallback == "" {
		fallback = identity.SupportEmail
	}
	return fmt.Sprintf("%s <%s>", identity.CompanyName, fallback)
}

func (d *Dispatcher) newMessageID(ctx context.Context) string {
	host := d.loader.TransportConfig(ctx).Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), host)
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	if !strings.Contains(parts[1], ".") {
		return false
	}
	return true
}
