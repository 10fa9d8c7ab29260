package serial

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goserial "go.bug.st/serial"

	"github.com/arloliu/go-relay/relay"
)

// transport implements relay.Transport over a serial port.
//
// The port's read timeout is set once at open time to the poll interval, so
// ReadAvailable short-blocks and reports an idle line as zero bytes.
type transport struct {
	portName   string
	baudRate   int
	readWindow time.Duration

	port goserial.Port
}

var _ relay.Transport = (*transport)(nil)

func newTransport(cfg *ConnectionConfig) *transport {
	return &transport{
		portName:   cfg.port,
		baudRate:   cfg.baudRate,
		readWindow: cfg.pollInterval,
	}
}

func (t *transport) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	port, err := goserial.Open(t.portName, &goserial.Mode{BaudRate: t.baudRate})
	if err != nil {
		return fmt.Errorf("open serial port %q: %w", t.portName, err)
	}

	if err := port.SetReadTimeout(t.readWindow); err != nil {
		_ = port.Close()

		return fmt.Errorf("set serial read timeout: %w", err)
	}

	t.port = port

	return nil
}

func (t *transport) Close() error {
	if t.port == nil {
		return nil
	}

	err := t.port.Close()
	t.port = nil

	return err
}

func (t *transport) Write(p []byte) error {
	if t.port == nil {
		return relay.ErrNotConnected
	}

	for written := 0; written < len(p); {
		n, err := t.port.Write(p[written:])
		written += n

		if err != nil {
			return err
		}
	}

	// Drain blocks until the output buffer reaches the device, so command
	// duration measurement starts from bytes-on-the-wire.
	return t.port.Drain()
}

func (t *transport) ReadAvailable(buf []byte) (int, error) {
	if t.port == nil {
		return 0, relay.ErrNotConnected
	}

	// With a read timeout configured, Read returns (0, nil) on an idle
	// line, which is exactly the ReadAvailable contract.
	return t.port.Read(buf)
}

func (t *transport) ClearInput(quiesce time.Duration) int {
	if t.port == nil {
		return 0
	}

	// Drop whatever the driver already buffered, then listen briefly for
	// in-flight residue from a previous exchange.
	_ = t.port.ResetInputBuffer()

	deadline := time.Now().Add(quiesce)
	discarded := 0
	buf := make([]byte, 256)

	for time.Now().Before(deadline) {
		n, err := t.port.Read(buf)
		discarded += n

		if err != nil || n == 0 {
			// One full read window with no data; the line is silent.
			break
		}
	}

	return discarded
}

func (t *transport) Remote() string {
	return t.portName + "@" + strconv.Itoa(t.baudRate)
}
