package serial

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-relay/logger"
	"github.com/arloliu/go-relay/relay"
)

// Connection is the serial-port variant of the relay Connector.
//
// It owns at most one open serial port handle at a time. Connect opens the
// port and builds a fresh command session around it; Disconnect closes the
// port idempotently.
type Connection struct {
	cfg     *ConnectionConfig
	logger  logger.Logger
	matcher *relay.PromptMatcher

	mu        sync.Mutex
	transport relay.Transport
	session   *relay.Session
	connected atomic.Bool

	metrics relay.SessionMetrics
}

// Compile-time check: Connection implements relay.Connector.
var _ relay.Connector = (*Connection)(nil)

// NewConnection creates a serial Connection with the given configuration.
//
// The prompt matcher is compiled here, so an invalid prompt pattern fails
// before any port is touched.
func NewConnection(cfg *ConnectionConfig) (*Connection, error) {
	if cfg == nil {
		return nil, &relay.ConfigError{Field: "config", Reason: "connection config is nil"}
	}

	matcher, err := relay.NewPromptMatcher(cfg.prompts)
	if err != nil {
		return nil, err
	}

	return &Connection{
		cfg:     cfg,
		logger:  cfg.logger,
		matcher: matcher,
	}, nil
}

// Connect opens the serial port.
//
// If the connection is already open, the prior port handle is closed first
// so it cannot leak.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport != nil {
		c.logger.Warn("serial: connect while connected, closing previous port",
			"remote", c.transport.Remote())
		_ = c.transport.Close()
		c.transport = nil
		c.session = nil
		c.connected.Store(false)
	}

	t := newTransport(c.cfg)
	if err := t.Open(ctx); err != nil {
		c.logger.Error("serial: connect failed", "remote", t.Remote(), "error", err)

		return &relay.ConnError{Op: "open", Err: err}
	}

	c.transport = t
	c.session = relay.NewSession(t, c.matcher, c.cfg.defaultTimeout,
		relay.WithPollInterval(c.cfg.pollInterval),
		relay.WithQuiesceWindow(c.cfg.quiesceWindow),
		relay.WithSessionLogger(c.logger),
		relay.WithSessionMetrics(&c.metrics),
	)
	c.connected.Store(true)

	c.logger.Info("serial: connected", "remote", t.Remote())

	return nil
}

// Disconnect closes the serial port. Calling it when already disconnected
// is a no-op, never an error.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil {
		return nil
	}

	remote := c.transport.Remote()
	if err := c.transport.Close(); err != nil {
		c.logger.Warn("serial: port close failed", "remote", remote, "error", err)
	}

	c.transport = nil
	c.session = nil
	c.connected.Store(false)

	c.logger.Info("serial: disconnected", "remote", remote)

	return nil
}

// SendCommand delegates to the command session. A zero timeout uses the
// configured default. A hard transport failure invalidates the connected
// state so subsequent calls fail fast with relay.ErrNotConnected until
// Connect is called again.
func (c *Connection) SendCommand(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	session := c.currentSession()
	if session == nil {
		return "", relay.ErrNotConnected
	}

	resp, err := session.SendCommand(ctx, cmd, timeout)
	if err != nil && errors.Is(err, relay.ErrConnFailed) {
		_ = c.Disconnect()
	}

	return resp, err
}

// Connected reports whether the port is currently open.
func (c *Connection) Connected() bool {
	return c.connected.Load()
}

// Status returns a read-only snapshot of the connection.
func (c *Connection) Status() relay.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := relay.IdleState
	if c.session != nil {
		state = c.session.State()
	}

	return relay.Status{
		Connected:      c.transport != nil,
		Variant:        relay.VariantSerial,
		Remote:         c.cfg.port + "@" + strconv.Itoa(c.cfg.baudRate),
		DefaultTimeout: c.cfg.defaultTimeout,
		SessionState:   state,
		Parameters: map[string]string{
			"port":     c.cfg.port,
			"baudrate": strconv.Itoa(c.cfg.baudRate),
		},
	}
}

// Metrics returns the metrics associated with the connection. Counters
// accumulate across reconnects.
func (c *Connection) Metrics() *relay.SessionMetrics {
	return &c.metrics
}

func (c *Connection) currentSession() *relay.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}
