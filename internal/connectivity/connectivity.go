// Package connectivity tracks whether the meter API is reachable.
package connectivity

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"codeberg.org/mutker/wattwatch/internal/errors"
	"codeberg.org/mutker/wattwatch/internal/logger"
)

// DialTimeout bounds a single reachability probe.
const DialTimeout = 3 * time.Second

// Signal reports whether the network is usable.
type Signal interface {
	Online() bool
}

// DialFunc opens a connection, matching net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Option configures a Monitor.
type Option func(*Monitor)

// WithDialer replaces the dialer used by Probe.
func WithDialer(d DialFunc) Option {
	return func(m *Monitor) { m.dial = d }
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// Monitor holds the current online state and notifies on transitions.
type Monitor struct {
	mu        sync.RWMutex
	online    bool
	listeners []func(bool)
	dial      DialFunc
	logger    logger.Logger
}

// New returns a Monitor starting in the given state.
func New(online bool, opts ...Option) *Monitor {
	d := &net.Dialer{Timeout: DialTimeout}
	m := &Monitor{
		online: online,
		dial:   d.DialContext,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Online reports the last known state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// OnChange registers fn to run on every transition.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Set updates the state. Listeners run only when the state changes.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(bool), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if online {
		m.logger.Info().Msg("Connection restored")
	} else {
		m.logger.Warn().Msg("Connection lost")
	}

	for _, fn := range listeners {
		fn(online)
	}
}

// Check dials address once and records the result.
func (m *Monitor) Check(ctx context.Context, address string) bool {
	dialCtx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()

	conn, err := m.dial(dialCtx, "tcp", address)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Debug().Err(err).Str("address", address).Msg("Probe failed")
			m.Set(false)
		}
		return false
	}
	_ = conn.Close()

	m.Set(true)
	return true
}

// Probe checks the host behind target() immediately and then every interval
// until ctx is done. target is re-evaluated on each probe so URL changes apply.
func (m *Monitor) Probe(ctx context.Context, target func() string, every time.Duration) error {
	if every <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, every)
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if address, err := HostPort(target()); err != nil {
			m.logger.Warn().Err(err).Msg("Cannot derive probe address")
		} else {
			m.Check(ctx, address)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// HostPort returns the host:port to dial for an http(s) URL.
func HostPort(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.New().Wrap(errors.ErrInvalidArgument, err)
	}
	if u.Hostname() == "" {
		return "", errors.New().WithData(errors.ErrInvalidArgument, rawURL)
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		default:
			port = "443"
		}
	}

	return net.JoinHostPort(u.Hostname(), port), nil
}

type static bool

func (s static) Online() bool { return bool(s) }

// Static returns a Signal fixed to online.
func Static(online bool) Signal {
	return static(online)
}
