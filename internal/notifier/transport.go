package notifier

import (
	"context"
	"sync"
	"sync/atomic"

	"attendance-notifier/internal/common/errors"
	"attendance-notifier/internal/common/logger"
	"attendance-notifier/internal/common/metrics"
)

// Message is one outbound email ready for delivery.
type Message struct {
	From      string
	To        string
	Subject   string
	HTML      string
	Text      string
	MessageID string
}

// Transport is a live handle capable of delivering mail.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
	// Probe performs a lightweight connectivity check against the configured
	// server without sending anything.
	Probe(ctx context.Context) error
}

// TransportFactory builds a Transport from a loaded configuration.
type TransportFactory func(cfg TransportConfig, log logger.Logger) (Transport, error)

func defaultTransportFactory(cfg TransportConfig, log logger.Logger) (Transport, error) {
	switch cfg.Provider {
	case "ses":
		return newSESTransport(cfg, log)
	default:
		return newSMTPTransport(cfg, log), nil
	}
}

type transportHolder struct {
	transport Transport
}

// Manager owns the transport lifecycle. Exactly one transport instance is
// held at a time behind an atomic pointer: a Refresh swaps the whole holder,
// so a delivery that already captured the old instance completes on it while
// subsequent calls observe the replacement.
type Manager struct {
	loader  *Loader
	logger  logger.Logger
	factory TransportFactory

	buildMu sync.Mutex
	current atomic.Pointer[transportHolder]
}

func NewManager(loader *Loader, log logger.Logger) *Manager {
	return NewManagerWithFactory(loader, log, defaultTransportFactory)
}

// NewManagerWithFactory allows tests to substitute the transport constructor.
func NewManagerWithFactory(loader *Loader, log logger.Logger, factory TransportFactory) *Manager {
	return &Manager{
		loader:  loader,
		logger:  log.WithFields(map[string]interface{}{"component": "transport-manager"}),
		factory: factory,
	}
}

// transport returns the held transport, building it lazily on first use.
func (m *Manager) transport(ctx context.Context) (Transport, error) {
	if h := m.current.Load(); h != nil {
		return h.transport, nil
	}

	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	if h := m.current.Load(); h != nil {
		return h.transport, nil
	}

	cfg := m.loader.TransportConfig(ctx)
	t, err := m.factory(cfg, m.logger)
	if err != nil {
		return nil, errors.NewTransportUnavailableError(err)
	}

	m.current.Store(&transportHolder{transport: t})
	m.logger.Info("mail transport initialized", map[string]interface{}{
		"provider": cfg.Provider,
		"host":     cfg.Host,
		"port":     cfg.Port,
	})
	return t, nil
}

// Deliver sends one message through the currently-held transport.
func (m *Manager) Deliver(ctx context.Context, msg *Message) error {
	t, err := m.transport(ctx)
	if err != nil {
		return err
	}
	return t.Send(ctx, msg)
}

// TestConnection probes the configured server and reports reachability.
// Failures are logged, never propagated: this is a diagnostic, not a
// delivery path.
func (m *Manager) TestConnection(ctx context.Context) bool {
	t, err := m.transport(ctx)
	if err != nil {
		m.logger.Warn("transport construction failed during connection test", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	if err := t.Probe(ctx); err != nil {
		m.logger.Warn("mail server connection test failed", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Refresh discards the held transport and rebuilds it from freshly-loaded
// settings. In-flight deliveries on the old transport complete normally.
func (m *Manager) Refresh(ctx context.Context) error {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	m.loader.Invalidate()
	cfg := m.loader.TransportConfig(ctx)

	t, err := m.factory(cfg, m.logger)
	if err != nil {
		// Leave the manager uninitialized so the next call retries the build.
		m.current.Store(nil)
		return errors.NewTransportUnavailableError(err)
	}

	m.current.Store(&transportHolder{transport: t})
	metrics.TransportRefreshes.Inc()
	m.logger.Info("mail transport refreshed", map[string]interface{}{
		"provider": cfg.Provider,
		"host":     cfg.Host,
		"port":     cfg.Port,
	})
	return nil
}
