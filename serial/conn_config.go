package serial

import (
	"time"

	"github.com/arloliu/go-relay/logger"
	"github.com/arloliu/go-relay/relay"
)

// DefaultBaudRate is the baud rate used when no baud rate option is supplied.
const DefaultBaudRate = 9600

// ConnectionConfig represents the configuration parameters for a serial
// relay connection.
type ConnectionConfig struct {
	// port identifies the serial device, e.g. "COM3" or "/dev/ttyUSB0".
	port string

	// baudRate specifies the line speed. Defaults to 9600.
	baudRate int

	// defaultTimeout defines the per-command timeout used when SendCommand
	// is called with a zero timeout. Defaults to 10 seconds.
	defaultTimeout time.Duration

	// prompts holds the prompt patterns recognized as end-of-response.
	// Empty means relay.DefaultPrompts.
	prompts []string

	// pollInterval defines the wait between read attempts while awaiting
	// the prompt, and the port's idle read timeout.
	// Defaults to relay.DefaultPollInterval.
	pollInterval time.Duration

	// quiesceWindow bounds the pre-command stale input drain.
	// Defaults to relay.DefaultQuiesceWindow.
	quiesceWindow time.Duration

	// logger provides a logger instance for connection events and errors.
	logger logger.Logger
}

// NewConnectionConfig creates a serial connection configuration with the
// given port identifier and optional functional options.
//
// It initializes a ConnectionConfig with default values and then applies the
// provided options. Returns a pointer to the initialized ConnectionConfig
// and an error if any option is invalid.
func NewConnectionConfig(port string, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		baudRate:       DefaultBaudRate,
		defaultTimeout: relay.DefaultCommandTimeout,
		pollInterval:   relay.DefaultPollInterval,
		quiesceWindow:  relay.DefaultQuiesceWindow,
		logger:         logger.GetLogger(),
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Port returns the configured serial device identifier.
func (cfg *ConnectionConfig) Port() string { return cfg.port }

// BaudRate returns the configured baud rate.
func (cfg *ConnectionConfig) BaudRate() int { return cfg.baudRate }

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

// withPort sets the serial device identifier. The port is mandatory and
// validated before any transport is constructed.
func withPort(port string) ConnOption {
	return newConnOptFunc("withPort", func(cfg *ConnectionConfig) error {
		if port == "" {
			return &relay.ConfigError{Field: "port", Reason: "port is required for a serial connection"}
		}
		cfg.port = port

		return nil
	})
}

// WithBaudRate sets the line speed for the serial connection.
// An error is returned if the baud rate is out of the valid range
// (300-4000000).
//
// The default value is 9600.
func WithBaudRate(baud int) ConnOption {
	return newConnOptFunc("WithBaudRate", func(cfg *ConnectionConfig) error {
		if baud < 300 || baud > 4000000 {
			return &relay.ConfigError{Field: "baudrate", Reason: "baud rate out of range [300, 4000000]"}
		}
		cfg.baudRate = baud

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
// prompt, which is also the port's idle read timeout. It should be between
// 1 millisecond and 1 second.
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
