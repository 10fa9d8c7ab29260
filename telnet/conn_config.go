package telnet

import (
	"time"

	"github.com/arloliu/go-relay/logger"
	"github.com/arloliu/go-relay/relay"
)

// DefaultPort is the TCP port used when no port option is supplied.
const DefaultPort = 23

// ConnectionConfig represents the configuration parameters for a telnet
// relay connection.
type ConnectionConfig struct {
	// host specifies the host of the remote device.
	host string

	// port specifies the TCP port number. Defaults to 23.
	port int

	// defaultTimeout defines the per-command timeout used when SendCommand
	// is called with a zero timeout. Defaults to 10 seconds.
	defaultTimeout time.Duration

	// connectTimeout defines the timeout for establishing the TCP
	// connection. Defaults to 5 seconds.
	connectTimeout time.Duration

	// prompts holds the prompt patterns recognized as end-of-response.
	// Empty means relay.DefaultPrompts.
	prompts []string

	// pollInterval defines the wait between read attempts while awaiting
	// the prompt. Defaults to relay.DefaultPollInterval.
	pollInterval time.Duration

	// quiesceWindow bounds the pre-command stale input drain.
	// Defaults to relay.DefaultQuiesceWindow.
	quiesceWindow time.Duration

	// logger provides a logger instance for connection events and errors.
	logger logger.Logger
}

// NewConnectionConfig creates a telnet connection configuration with the
// given host and optional functional options.
//
// It initializes a ConnectionConfig with default values and then applies the
// provided options. Returns a pointer to the initialized ConnectionConfig
// and an error if any option is invalid.
func NewConnectionConfig(host string, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		port:           DefaultPort,
		defaultTimeout: relay.DefaultCommandTimeout,
		connectTimeout: 5 * time.Second,
		pollInterval:   relay.DefaultPollInterval,
		quiesceWindow:  relay.DefaultQuiesceWindow,
		logger:         logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Host returns the configured remote host.
func (cfg *ConnectionConfig) Host() string { return cfg.host }

// Port returns the configured TCP port.
func (cfg *ConnectionConfig) Port() int { return cfg.port }

// DefaultTimeout returns the configured per-command timeout.
func (cfg *ConnectionConfig) DefaultTimeout() time.Duration { return cfg.defaultTimeout }

// Prompts returns a copy of the configured prompt patterns.
func (cfg *ConnectionConfig) Prompts() []string { return append([]string(nil), cfg.prompts...) }

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error { return c.applyFunc(cfg) }

func newConnOptFunc(name string, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{name: name, applyFunc: f}
}

// withHost sets the remote host. The host is mandatory and validated before
// any transport is constructed.
func withHost(host string) ConnOption {
	return newConnOptFunc("withHost", func(cfg *ConnectionConfig) error {
		if host == "" {
			return &relay.ConfigError{Field: "host", Reason: "host is required for a telnet connection"}
		}
		cfg.host = host

		return nil
	})
}

// WithPort sets the TCP port number for the connection.
// An error is returned if the port number is out of the valid range (1-65535).
//
// The default value is 23.
func WithPort(port int) ConnOption {
	return newConnOptFunc("WithPort", func(cfg *ConnectionConfig) error {
		if port < 1 || port > 65535 {
			return &relay.ConfigError{Field: "port", Reason: "port is out of range [1, 65535]"}
		}
		cfg.port = port

		return nil
	})
}

// WithDefaultTimeout sets the per-command timeout used when SendCommand is
// called with a zero timeout. It should be between 100 milliseconds and
// 10 minutes.
//
// The default value is 10 seconds.
func WithDefaultTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithDefaultTimeout", func(cfg *ConnectionConfig) error {
		if val < 100*time.Millisecond || val > 10*time.Minute {
			return &relay.ConfigError{Field: "timeout", Reason: "default timeout out of range [0.1s, 10m]"}
		}
		cfg.defaultTimeout = val

		return nil
	})
}

// WithConnectTimeout sets the timeout for establishing the TCP connection.
// It should be between 100 milliseconds and 30 seconds.
//
// The default value is 5 seconds.
func WithConnectTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithConnectTimeout", func(cfg *ConnectionConfig) error {
		if val < 100*time.Millisecond || val > 30*time.Second {
			return &relay.ConfigError{Field: "connectTimeout", Reason: "connect timeout out of range [0.1s, 30s]"}
		}
		cfg.connectTimeout = val

		return nil
	})
}

// WithPrompts sets the prompt patterns recognized as end-of-response.
// Patterns are validated here so an invalid pattern surfaces before any
// transport is constructed.
//
// The default is relay.DefaultPrompts.
func WithPrompts(prompts []string) ConnOption {
	return newConnOptFunc("WithPrompts", func(cfg *ConnectionConfig) error {
		if _, err := relay.NewPromptMatcher(prompts); err != nil {
			return err
		}
		cfg.prompts = append([]string(nil), prompts...)

		return nil
	})
}

// WithPollInterval sets the wait between read attempts while awaiting the
// prompt. It should be between 1 millisecond and 1 second.
//
// The default value is relay.DefaultPollInterval.
func WithPollInterval(val time.Duration) ConnOption {
	return newConnOptFunc("WithPollInterval", func(cfg *ConnectionConfig) error {
		if val < time.Millisecond || val > time.Second {
			return &relay.ConfigError{Field: "pollInterval", Reason: "poll interval out of range [1ms, 1s]"}
		}
		cfg.pollInterval = val

		return nil
	})
}

// WithQuiesceWindow sets the bounded wait used to drain stale input before
// each command. It should be between 1 millisecond and 1 second.
//
// The default value is relay.DefaultQuiesceWindow.
func WithQuiesceWindow(val time.Duration) ConnOption {
	return newConnOptFunc("WithQuiesceWindow", func(cfg *ConnectionConfig) error {
		if val < time.Millisecond || val > time.Second {
			return &relay.ConfigError{Field: "quiesceWindow", Reason: "quiesce window out of range [1ms, 1s]"}
		}
		cfg.quiesceWindow = val

		return nil
	})
}

// WithLogger sets the logger for the connection.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", func(cfg *ConnectionConfig) error {
		if l == nil {
			return &relay.ConfigError{Field: "logger", Reason: "logger is nil"}
		}
		cfg.logger = l

		return nil
	})
}
