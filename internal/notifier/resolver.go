package notifier

import (
	"context"
	"encoding/json"

	"attendance-notifier/internal/common/logger"
	"attendance-notifier/internal/common/metrics"
	"attendance-notifier/internal/common/validation"
	"attendance-notifier/internal/settings"
)

// overrideSchema is what an administrator-stored template override must look
// like. Anything that fails this check is treated as absent.
var overrideSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"subject", "body"},
	Properties: map[string]validation.Property{
		"subject": {
			Type:      "string",
			MinLength: validation.IntPtr(1),
			MaxLength: validation.IntPtr(500),
		},
		"body": {
			Type:      "string",
			MinLength: validation.IntPtr(1),
		},
	},
	AdditionalProperties: true,
}

// Resolver turns a notification type into the template actually used for one
// dispatch: the stored override when present and valid, the built-in default
// otherwise. Resolution never fails; a broken override must not block every
// notification of its type.
type Resolver struct {
	gateway settings.Gateway
	logger  logger.Logger
}

func NewResolver(gateway settings.Gateway, log logger.Logger) *Resolver {
	return &Resolver{
		gateway: gateway,
		logger:  log.WithFields(map[string]interface{}{"component": "template-resolver"}),
	}
}

// Resolve returns the template to use for entry. Safe for concurrent use.
func (r *Resolver) Resolve(ctx context.Context, entry CatalogEntry) Template {
	fallback, ok := DefaultTemplate(entry.StorageKey)
	if !ok {
		// Catalog and defaults are maintained together; reaching this means
		// a registration bug, not a runtime condition. Return an empty
		// template rather than panic in a delivery path.
		r.logger.Error("no default template registered", map[string]interface{}{
			"notificationType": entry.Type,
			"storageKey":       entry.StorageKey,
		})
		return Template{}
	}

	value, found, err := r.gateway.Get(ctx, entry.StorageKey)
	if err != nil {
		r.logger.Warn("override lookup failed, using default template", map[string]interface{}{
			"notificationType": entry.Type,
			"error":            err.Error(),
		})
		return fallback
	}
	if !found {
		return fallback
	}

	tmpl, ok := parseOverride(value)
	if !ok {
		r.logger.Warn("stored template override is malformed, using default template", map[string]interface{}{
			"notificationType": entry.Type,
			"storageKey":       entry.StorageKey,
		})
		metrics.TemplateOverrideFallbacks.WithLabelValues(string(entry.Type)).Inc()
		return fallback
	}

	return tmpl
}

// parseOverride normalizes a stored override value into a Template.
// Structured values are used directly; raw strings are parsed as a JSON
// {subject, body} payload. Any parse or shape failure reports !ok.
func parseOverride(value settings.Value) (Template, bool) {
	m, err := value.AsMap()
	if err != nil {
		return Template{}, false
	}
	if err := validation.Validate(m, overrideSchema); err != nil {
		return Template{}, false
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return Template{}, false
	}
	var tmpl Template
	if err := json.Unmarshal(raw, &tmpl); err != nil {
		return Template{}, false
	}
	if tmpl.Subject == "" || tmpl.Body == "" {
		return Template{}, false
	}
	return tmpl, true
}
