package notifier

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"attendance-notifier/internal/common/config"
	"attendance-notifier/internal/common/logger"
	"attendance-notifier/internal/settings"
)

// Settings keys consumed by the loader. KeyMailConfig is the current format;
// KeyLegacyMailConfig is kept for installations that predate the rename and
// is consulted only when the current key is absent or unusable.
const (
	KeyMailConfig       = "mail_config"
	KeyLegacyMailConfig = "smtp_settings"
	KeyCompanyName      = "company_name"
	KeySupportEmail     = "support_email"
	KeyLoginURL         = "login_url"
)

// Identity defaults used when the settings store holds nothing.
const (
	defaultCompanyName  = "Attendance System"
	defaultSupportEmail = "support@example.com"
	defaultLoginURL     = "http://localhost:3000/login"
)

// TransportConfig is the fully-typed mail transport configuration after
// normalizing whatever shape the settings store returned.
type TransportConfig struct {
	Provider    string
	Host        string
	Port        int
	Secure      bool
	User        string
	Pass        string
	FromAddress string
	AWSRegion   string
	SendTimeout time.Duration
}

// OrganizationIdentity carries the fields auto-injected into every render.
type OrganizationIdentity struct {
	CompanyName  string
	SupportEmail string
	LoginURL     string
}

type configSnapshot struct {
	transport TransportConfig
	identity  OrganizationIdentity
}

// Loader reads transport credentials and organization identity from the
// settings gateway, caching them until explicitly invalidated. The cache is
// an atomic snapshot so concurrent readers never observe a half-updated
// value; the loader never polls.
type Loader struct {
	gateway  settings.Gateway
	fallback config.MailConfig
	logger   logger.Logger

	// mu guards gen and snapshot publication. Reads stay lock-free through
	// the atomic pointer; loads perform their gateway I/O outside the lock.
	mu       sync.Mutex
	gen      uint64
	snapshot atomic.Pointer[configSnapshot]
}

func NewLoader(gateway settings.Gateway, fallback config.MailConfig, log logger.Logger) *Loader {
	return &Loader{
		gateway:  gateway,
		fallback: fallback,
		logger:   log.WithFields(map[string]interface{}{"component": "config-loader"}),
	}
}

// TransportConfig returns the current transport configuration, loading and
// caching it on first access.
func (l *Loader) TransportConfig(ctx context.Context) TransportConfig {
	return l.current(ctx).transport
}

// OrganizationIdentity returns the current identity fields, loading and
// caching them on first access.
func (l *Loader) OrganizationIdentity(ctx context.Context) OrganizationIdentity {
	return l.current(ctx).identity
}

// Invalidate discards the cached snapshot. The next access reloads from the
// settings gateway.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.gen++
	l.snapshot.Store(nil)
	l.mu.Unlock()
}

func (l *Loader) current(ctx context.Context) *configSnapshot {
	if snap := l.snapshot.Load(); snap != nil {
		return snap
	}

	l.mu.Lock()
	gen := l.gen
	l.mu.Unlock()

	snap := &configSnapshot{
		transport: l.loadTransportConfig(ctx),
		identity:  l.loadIdentity(ctx),
	}

	// Publish only if no Invalidate raced the load: a slow load finishing
	// after an invalidation must not overwrite a snapshot reloaded from the
	// newer settings. The caller still gets the values it captured.
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen == gen && l.snapshot.Load() == nil {
		l.snapshot.Store(snap)
		return snap
	}
	if cur := l.snapshot.Load(); cur != nil {
		return cur
	}
	return snap
}

// loadTransportConfig resolves the transport configuration: current settings
// key first, then the legacy key, then the environment-level fallback. The
// fallback always yields a constructible configuration, possibly pointing at
// an unreachable server, but construction itself cannot fail for lack of
// settings.
func (l *Loader) loadTransportConfig(ctx context.Context) TransportConfig {
	cfg := l.envFallback()

	for _, key := range []string{KeyMailConfig, KeyLegacyMailConfig} {
		value, found, err := l.gateway.Get(ctx, key)
		if err != nil {
			l.logger.Warn("mail settings lookup failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}
		if !found {
			continue
		}
		m, err := value.AsMap()
		if err != nil {
			l.logger.Warn("mail settings entry is not a valid object, ignoring", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}
		applyMailSettings(&cfg, m)
		return cfg
	}

	return cfg
}

func (l *Loader) envFallback() TransportConfig {
	return TransportConfig{
		Provider:    l.fallback.Provider,
		Host:        l.fallback.Host,
		Port:        l.fallback.Port,
		Secure:      l.fallback.Secure,
		User:        l.fallback.User,
		Pass:        l.fallback.Password,
		FromAddress: l.fallback.FromAddress,
		AWSRegion:   l.fallback.AWSRegion,
		SendTimeout: config.GetDuration(l.fallback.SendTimeout),
	}
}

// applyMailSettings overlays a stored settings object onto cfg. Fields absent
// from the stored object keep their fallback values.
func applyMailSettings(cfg *TransportConfig, m map[string]interface{}) {
	if v, ok := asString(m, "provider"); ok {
		cfg.Provider = v
	}
	if v, ok := asString(m, "host"); ok {
		cfg.Host = v
	}
	if v, ok := asInt(m, "port"); ok {
		cfg.Port = v
	}
	if v, ok := asBool(m, "secure"); ok {
		cfg.Secure = v
	}
	if v, ok := asString(m, "user"); ok {
		cfg.User = v
	}
	if v, ok := asString(m, "pass"); ok {
		cfg.Pass = v
	}
	if v, ok := asString(m, "from"); ok {
		cfg.FromAddress = v
	}
	if v, ok := asString(m, "region"); ok {
		cfg.AWSRegion = v
	}
}

// loadIdentity resolves the organization identity fields. Each field falls
// back independently; a missing company name does not blank out a present
// support email.
func (l *Loader) loadIdentity(ctx context.Context) OrganizationIdentity {
	identity := OrganizationIdentity{
		CompanyName:  defaultCompanyName,
		SupportEmail: defaultSupportEmail,
		LoginURL:     defaultLoginURL,
	}

	if v := l.lookupString(ctx, KeyCompanyName); v != "" {
		identity.CompanyName = v
	}
	if v := l.lookupString(ctx, KeySupportEmail); v != "" {
		identity.SupportEmail = v
	}
	if v := l.lookupString(ctx, KeyLoginURL); v != "" {
		identity.LoginURL = v
	}

	return identity
}

func (l *Loader) lookupString(ctx context.Context, key string) string {
	value, found, err := l.gateway.Get(ctx, key)
	if err != nil {
		l.logger.Warn("identity settings lookup failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return ""
	}
	if !found {
		return ""
	}
	if value.IsStructured() {
		// Identity keys are stored as plain strings; an object here is a
		// misconfiguration and falls back to the default.
		return ""
	}
	return value.AsString()
}

func asString(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func asInt(m map[string]interface{}, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		var parsed int
		for _, r := range n {
			if r < '0' || r > '9' {
				return 0, false
			}
			parsed = parsed*10 + int(r-'0')
		}
		if n == "" {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func asBool(m map[string]interface{}, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return b == "true" || b == "1", true
	}
	return false, false
}
