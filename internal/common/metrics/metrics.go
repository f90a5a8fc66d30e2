// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sends_total",
			Help: "Total number of notifications dispatched",
		},
		[]string{"notification_type"},
	)

	NotificationSendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_send_failures_total",
			Help: "Total number of notification deliveries that failed",
		},
		[]string{"notification_type", "error_code"},
	)

	NotificationSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notification_send_duration_seconds",
			Help: "Duration of notification delivery in seconds",
		},
		[]string{"notification_type"},
	)

	TemplateOverrideFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_override_fallbacks_total",
			Help: "Times a stored template override was unusable and the built-in default was used",
		},
		[]string{"notification_type"},
	)

	TransportRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transport_refreshes_total",
			Help: "Times the mail transport was rebuilt from settings",
		},
	)
)
