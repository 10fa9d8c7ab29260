package serial

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-relay/relay"
)

// fakePort is an in-memory relay.Transport standing in for a serial port,
// since unit tests cannot open a real device.
type fakePort struct {
	mu      sync.Mutex
	pending []byte
	writes  [][]byte
	readErr error
}

var _ relay.Transport = (*fakePort)(nil)

func (f *fakePort) Open(ctx context.Context) error { return nil }
func (f *fakePort) Close() error                   { return nil }
func (f *fakePort) Remote() string                 { return "COM1@9600" }

func (f *fakePort) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes = append(f.writes, append([]byte(nil), p...))
	f.pending = append(f.pending, append(append([]byte(nil), p...), "OK\n=>"...)...)

	return nil
}

func (f *fakePort) ReadAvailable(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readErr != nil {
		return 0, f.readErr
	}

	n := copy(buf, f.pending)
	f.pending = f.pending[n:]

	return n, nil
}

func (f *fakePort) ClearInput(quiesce time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.pending)
	f.pending = nil

	return n
}

// attachFakePort wires a fake transport into a disconnected Connection,
// mirroring what Connect does with a real port.
func attachFakePort(c *Connection, port relay.Transport) {
	c.transport = port
	c.session = relay.NewSession(port, c.matcher, c.cfg.defaultTimeout,
		relay.WithPollInterval(c.cfg.pollInterval),
		relay.WithQuiesceWindow(c.cfg.quiesceWindow),
		relay.WithSessionLogger(c.logger),
		relay.WithSessionMetrics(&c.metrics),
	)
	c.connected.Store(true)
}

func newTestConnection(t *testing.T) *Connection {
	t.Helper()

	cfg, err := NewConnectionConfig("COM1",
		WithDefaultTimeout(time.Second),
		WithPollInterval(2*time.Millisecond),
		WithQuiesceWindow(2*time.Millisecond),
	)
	require.NoError(t, err)

	conn, err := NewConnection(cfg)
	require.NoError(t, err)

	return conn
}

func TestSendCommandNotConnected(t *testing.T) {
	require := require.New(t)

	conn := newTestConnection(t)

	_, err := conn.SendCommand(context.Background(), "STATUS", 0)
	require.ErrorIs(err, relay.ErrNotConnected)
}

func TestDisconnectIdempotent(t *testing.T) {
	require := require.New(t)

	conn := newTestConnection(t)

	require.NoError(conn.Disconnect())
	require.NoError(conn.Disconnect())

	attachFakePort(conn, &fakePort{})
	require.NoError(conn.Disconnect())
	require.NoError(conn.Disconnect())
	require.False(conn.Connected())
}

func TestSendCommandRoundTrip(t *testing.T) {
	require := require.New(t)

	conn := newTestConnection(t)
	port := &fakePort{}
	attachFakePort(conn, port)

	resp, err := conn.SendCommand(context.Background(), "STATUS", 0)
	require.NoError(err)
	require.Equal("STATUS\nOK\n=>", resp)
	require.Equal([]byte("STATUS\n"), port.writes[0])
}

func TestHardFailureInvalidatesConnection(t *testing.T) {
	require := require.New(t)

	conn := newTestConnection(t)
	port := &fakePort{readErr: errors.New("device unplugged")}
	attachFakePort(conn, port)

	_, err := conn.SendCommand(context.Background(), "STATUS", 0)
	require.ErrorIs(err, relay.ErrConnFailed)
	require.False(conn.Connected())

	_, err = conn.SendCommand(context.Background(), "STATUS", 0)
	require.ErrorIs(err, relay.ErrNotConnected)
}

func TestStatus(t *testing.T) {
	require := require.New(t)

	conn := newTestConnection(t)

	status := conn.Status()
	require.False(status.Connected)
	require.Equal(relay.VariantSerial, status.Variant)
	require.Equal("COM1@9600", status.Remote)
	require.Equal(time.Second, status.DefaultTimeout)
	require.Equal("COM1", status.Parameters["port"])
	require.Equal("9600", status.Parameters["baudrate"])

	attachFakePort(conn, &fakePort{})
	require.True(conn.Status().Connected)
}

func TestConnectFailure(t *testing.T) {
	require := require.New(t)

	// A device path that cannot exist on any platform the tests run on.
	cfg, err := NewConnectionConfig("/dev/nonexistent-relay-port")
	require.NoError(err)

	conn, err := NewConnection(cfg)
	require.NoError(err)

	err = conn.Connect(context.Background())
	require.ErrorIs(err, relay.ErrConnFailed)
	require.False(conn.Connected())
}
