package relay

import (
	"context"
	"time"
)

// Transport is a capability abstraction over a raw byte channel to a device.
//
// The serial and telnet packages each provide an implementation. A Transport
// handle is exclusively owned by its Connector; no other component may read
// or write it directly, and implementations are not required to be safe for
// concurrent use.
type Transport interface {
	// Open establishes the underlying channel. It fails if the device
	// cannot be opened (not present, permission, already in use, DNS
	// failure, connection refused). Errors are returned raw; the
	// Connector wraps them into the package taxonomy.
	Open(ctx context.Context) error

	// Close releases the channel. It is idempotent: closing an already
	// closed transport returns nil.
	Close() error

	// Write sends all bytes in p and flushes before returning, so the
	// caller's duration measurements start from bytes-on-the-wire.
	// It returns ErrNotConnected when the transport is not open; other
	// errors are returned raw and wrapped by the Session.
	Write(p []byte) error

	// ReadAvailable reads whatever bytes are available into buf, blocking
	// at most for a short transport-defined interval. It returns (0, nil)
	// when no bytes arrived in that window; a non-nil error indicates a
	// hard transport failure, never an idle line.
	ReadAvailable(buf []byte) (int, error)

	// ClearInput discards any bytes already buffered by the OS or driver,
	// waiting at most the quiesce window for residual bytes to drain. It
	// returns the number of stale bytes discarded.
	ClearInput(quiesce time.Duration) int

	// Remote describes the endpoint for logging and status reporting,
	// e.g. "COM3@19200" or "10.0.0.5:23".
	Remote() string
}
