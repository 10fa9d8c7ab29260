package relay

import (
	"context"
	"time"
)

// Variant identifies the transport variant of a Connector.
type Variant string

const (
	// VariantSerial is a connector over a physical or virtual serial port.
	VariantSerial Variant = "serial"
	// VariantTelnet is a connector over a TCP stream.
	VariantTelnet Variant = "telnet"
)

// Connector binds a Transport, a PromptMatcher and a default timeout into a
// single reusable object for command/response exchanges with one device.
//
// Lifecycle: a Connector is created disconnected. Connect opens the
// Transport; SendCommand may then be called any number of times; Disconnect
// releases the Transport and is always safe to call, even when already
// disconnected. A Connector admits at most one in-flight SendCommand;
// concurrent callers on the same instance are serialized in lock order.
type Connector interface {
	// Connect opens the transport. If the connector is already connected,
	// the prior transport handle is closed first; it is never leaked.
	// It returns an error matching ErrConnFailed when the transport
	// cannot be opened.
	Connect(ctx context.Context) error

	// Disconnect closes the transport and returns the connector to the
	// disconnected state. It is idempotent and never returns an error for
	// being already disconnected.
	Disconnect() error

	// SendCommand writes cmd (a trailing line terminator is appended when
	// missing) and reads the response until a prompt match. A zero
	// timeout uses the connector's default. The returned text is the full
	// accumulated response, prompt included.
	//
	// It returns an error matching ErrNotConnected when disconnected
	// (no I/O is attempted), ErrCommandTimeout when no prompt arrives in
	// time, or ErrConnFailed on a hard transport failure, which also
	// invalidates the connected state.
	SendCommand(ctx context.Context, cmd string, timeout time.Duration) (string, error)

	// Connected reports whether the transport is currently open.
	Connected() bool

	// Status returns a read-only snapshot of the connector. It never
	// mutates connector state.
	Status() Status
}

// Status is a derived, read-only snapshot of a Connector.
type Status struct {
	// Connected reports whether the transport is open.
	Connected bool
	// Variant is the transport variant.
	Variant Variant
	// Remote describes the endpoint, e.g. "COM3@19200" or "10.0.0.5:23".
	Remote string
	// DefaultTimeout is the per-command timeout used when SendCommand is
	// called with a zero timeout.
	DefaultTimeout time.Duration
	// SessionState is the framer's current state, for diagnostics.
	SessionState SessionState
	// Parameters holds the variant-specific connection parameters.
	Parameters map[string]string
}
