package relay

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfigInvalid indicates that a required parameter is missing or
	// invalid. It is surfaced before any I/O is attempted and is never
	// retried automatically.
	ErrConfigInvalid = errors.New("relay: invalid configuration")

	// ErrNotConnected indicates that an operation requiring an open
	// transport was invoked while disconnected. No I/O is attempted.
	ErrNotConnected = errors.New("relay: not connected")

	// ErrConnFailed indicates that the transport could not be opened, or
	// was closed or broken at the time of a write or read. The core never
	// retries; a failure during SendCommand invalidates the connector's
	// connected state.
	ErrConnFailed = errors.New("relay: connection failed")

	// ErrCommandTimeout indicates that no prompt was observed within the
	// timeout window. The transport remains open; the device may still
	// respond late or a later command may resynchronize.
	ErrCommandTimeout = errors.New("relay: command timeout")
)

// ConfigError reports an invalid or missing configuration value.
// It matches ErrConfigInvalid via errors.Is.
type ConfigError struct {
	// Field names the offending parameter, e.g. "host" or "baudrate".
	Field string
	// Reason describes why the value was rejected.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("relay: invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfigInvalid }

// ConnError reports a hard transport failure during open, read, or write.
// It matches ErrConnFailed via errors.Is and unwraps to the underlying error.
type ConnError struct {
	// Op is the failing operation: "open", "read", "write", or "clear".
	Op string
	// Err is the underlying transport error.
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("relay: connection failed during %s: %v", e.Op, e.Err)
}

func (e *ConnError) Is(target error) bool { return target == ErrConnFailed }

func (e *ConnError) Unwrap() error { return e.Err }

// TimeoutError reports that a command's prompt was not observed within the
// timeout window. It matches ErrCommandTimeout via errors.Is.
//
// Partial holds the sanitized response text accumulated before the deadline.
// The SendCommand result string stays empty on timeout; callers needing the
// partial output for diagnostics retrieve it with errors.As.
type TimeoutError struct {
	// Timeout is the effective timeout that elapsed.
	Timeout time.Duration
	// Elapsed is the measured time since the command was written.
	Elapsed time.Duration
	// Partial is the response text accumulated before the deadline.
	Partial string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("relay: command timeout: no prompt after %s (timeout %s, %d bytes buffered)",
		e.Elapsed.Round(time.Millisecond), e.Timeout, len(e.Partial))
}

func (e *TimeoutError) Is(target error) bool { return target == ErrCommandTimeout }
