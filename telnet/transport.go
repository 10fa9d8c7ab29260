package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/arloliu/go-relay/relay"
)

// transport implements relay.Transport over a TCP stream.
//
// Reads use short deadlines so ReadAvailable returns quickly on an idle
// line; a deadline expiry is reported as zero bytes, not an error.
type transport struct {
	host           string
	port           int
	connectTimeout time.Duration
	readWindow     time.Duration

	conn net.Conn
}

var _ relay.Transport = (*transport)(nil)

func newTransport(cfg *ConnectionConfig) *transport {
	return &transport{
		host:           cfg.host,
		port:           cfg.port,
		connectTimeout: cfg.connectTimeout,
		readWindow:     cfg.pollInterval,
	}
}

func (t *transport) Open(ctx context.Context) error {
	dialer := net.Dialer{Timeout: t.connectTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", t.addr())
	if err != nil {
		return fmt.Errorf("dial tcp %s: %w", t.addr(), err)
	}
	t.conn = conn

	return nil
}

func (t *transport) Close() error {
	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

func (t *transport) Write(p []byte) error {
	if t.conn == nil {
		return relay.ErrNotConnected
	}

	// TCP has no further flush layer; returning from Write means the bytes
	// were handed to the kernel, which is the measurement point used for
	// command timing.
	_ = t.conn.SetWriteDeadline(time.Now().Add(t.connectTimeout))
	for written := 0; written < len(p); {
		n, err := t.conn.Write(p[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}

func (t *transport) ReadAvailable(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, relay.ErrNotConnected
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(t.readWindow)); err != nil {
		return 0, err
	}

	n, err := t.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return n, nil
		}

		return n, err
	}

	return n, nil
}

func (t *transport) ClearInput(quiesce time.Duration) int {
	if t.conn == nil {
		return 0
	}

	// Read and discard until the line stays silent for the rest of the
	// quiesce window or the window elapses.
	deadline := time.Now().Add(quiesce)
	discarded := 0
	buf := make([]byte, 256)

	for time.Now().Before(deadline) {
		_ = t.conn.SetReadDeadline(deadline)

		n, err := t.conn.Read(buf)
		discarded += n

		if err != nil {
			break
		}
	}

	return discarded
}

func (t *transport) Remote() string {
	return t.addr()
}

func (t *transport) addr() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
