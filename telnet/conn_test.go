package telnet

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-relay/relay"
)

// fakeDevice is a TCP server that mimics a line-oriented relay: it reads a
// command line and answers with a scripted response ending in a prompt.
type fakeDevice struct {
	listener net.Listener

	// greeting is written immediately after accept, simulating stale
	// bytes from a login banner or a previous exchange.
	greeting string

	// respond maps a received command line to the response text. A nil
	// respond makes the device silent after the greeting.
	respond func(cmd string) string

	// closeAfterRead makes the device drop the connection right after the
	// first command line, simulating a mid-exchange link failure.
	closeAfterRead bool
}

func startFakeDevice(t *testing.T, d *fakeDevice) (host string, port int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	d.listener = listener
	t.Cleanup(func() { _ = listener.Close() })

	go d.serve()

	addr := listener.Addr().(*net.TCPAddr)

	return "127.0.0.1", addr.Port
}

func (d *fakeDevice) serve() {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}

		go d.handle(conn)
	}
}

func (d *fakeDevice) handle(conn net.Conn) {
	defer conn.Close()

	if d.greeting != "" {
		_, _ = conn.Write([]byte(d.greeting))
	}

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		if d.closeAfterRead {
			return
		}

		if d.respond == nil {
			continue
		}

		resp := d.respond(strings.TrimRight(line, "\r\n"))
		if _, err := conn.Write([]byte(resp)); err != nil {
			return
		}
	}
}

func newTestConfig(t *testing.T, host string, port int, opts ...ConnOption) *ConnectionConfig {
	t.Helper()

	base := []ConnOption{
		WithPort(port),
		WithDefaultTimeout(2 * time.Second),
		WithPollInterval(2 * time.Millisecond),
		WithQuiesceWindow(5 * time.Millisecond),
	}

	cfg, err := NewConnectionConfig(host, append(base, opts...)...)
	require.NoError(t, err)

	return cfg
}

func TestConnectionRoundTrip(t *testing.T) {
	require := require.New(t)

	device := &fakeDevice{
		respond: func(cmd string) string { return cmd + "\nOK\n>" },
	}
	host, port := startFakeDevice(t, device)

	conn, err := NewConnection(newTestConfig(t, host, port))
	require.NoError(err)

	ctx := context.Background()
	require.NoError(conn.Connect(ctx))
	require.True(conn.Connected())

	resp, err := conn.SendCommand(ctx, "STATUS", 0)
	require.NoError(err)
	require.Equal("STATUS\nOK\n>", resp)

	// Several sequential commands over one connection.
	resp, err = conn.SendCommand(ctx, "METER", 0)
	require.NoError(err)
	require.Equal("METER\nOK\n>", resp)

	require.NoError(conn.Disconnect())
	require.False(conn.Connected())

	require.Equal(uint64(2), conn.Metrics().CmdSendCount.Load())
	require.Equal(uint64(2), conn.Metrics().CmdRecvCount.Load())
}

func TestSendCommandNotConnected(t *testing.T) {
	require := require.New(t)

	conn, err := NewConnection(newTestConfig(t, "127.0.0.1", 9999))
	require.NoError(err)

	// Never connected: fails fast without attempting I/O.
	_, err = conn.SendCommand(context.Background(), "STATUS", 0)
	require.ErrorIs(err, relay.ErrNotConnected)
}

func TestDisconnectIdempotent(t *testing.T) {
	require := require.New(t)

	device := &fakeDevice{respond: func(cmd string) string { return ">" }}
	host, port := startFakeDevice(t, device)

	conn, err := NewConnection(newTestConfig(t, host, port))
	require.NoError(err)

	// Disconnect without a prior connect is a no-op.
	require.NoError(conn.Disconnect())

	require.NoError(conn.Connect(context.Background()))
	require.NoError(conn.Disconnect())
	require.NoError(conn.Disconnect())
}

func TestConnectWhileConnected(t *testing.T) {
	require := require.New(t)

	device := &fakeDevice{
		respond: func(cmd string) string { return cmd + "\n>" },
	}
	host, port := startFakeDevice(t, device)

	conn, err := NewConnection(newTestConfig(t, host, port))
	require.NoError(err)

	ctx := context.Background()
	require.NoError(conn.Connect(ctx))

	// Reconnecting closes the previous handle and stays usable.
	require.NoError(conn.Connect(ctx))
	require.True(conn.Connected())

	resp, err := conn.SendCommand(ctx, "STATUS", 0)
	require.NoError(err)
	require.Equal("STATUS\n>", resp)

	require.NoError(conn.Disconnect())
}

func TestConnectFailure(t *testing.T) {
	require := require.New(t)

	// Grab a port and close it so the dial is refused.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(listener.Close())

	cfg := newTestConfig(t, "127.0.0.1", port, WithConnectTimeout(500*time.Millisecond))
	conn, err := NewConnection(cfg)
	require.NoError(err)

	err = conn.Connect(context.Background())
	require.ErrorIs(err, relay.ErrConnFailed)
	require.False(conn.Connected())
}

func TestCommandTimeoutKeepsConnection(t *testing.T) {
	require := require.New(t)

	// Device answers without ever printing a prompt.
	device := &fakeDevice{
		respond: func(cmd string) string { return "WORKING...\n" },
	}
	host, port := startFakeDevice(t, device)

	conn, err := NewConnection(newTestConfig(t, host, port))
	require.NoError(err)

	ctx := context.Background()
	require.NoError(conn.Connect(ctx))

	_, err = conn.SendCommand(ctx, "STATUS", 80*time.Millisecond)
	require.ErrorIs(err, relay.ErrCommandTimeout)

	var timeoutErr *relay.TimeoutError
	require.True(errors.As(err, &timeoutErr))
	require.Contains(timeoutErr.Partial, "WORKING...")

	// Timeout does not invalidate the connection.
	require.True(conn.Connected())

	require.NoError(conn.Disconnect())
}

func TestHardFailureInvalidatesConnection(t *testing.T) {
	require := require.New(t)

	// Device drops the connection right after the first command line.
	device := &fakeDevice{closeAfterRead: true}
	host, port := startFakeDevice(t, device)

	conn, err := NewConnection(newTestConfig(t, host, port))
	require.NoError(err)

	ctx := context.Background()
	require.NoError(conn.Connect(ctx))

	// The peer closes mid-exchange; the read surfaces a hard failure
	// rather than a timeout.
	_, err = conn.SendCommand(ctx, "STATUS", 2*time.Second)
	require.ErrorIs(err, relay.ErrConnFailed)

	// Connected state must be invalidated so later calls fail fast.
	require.False(conn.Connected())

	_, err = conn.SendCommand(ctx, "STATUS", 0)
	require.ErrorIs(err, relay.ErrNotConnected)
}

func TestStaleGreetingCleared(t *testing.T) {
	require := require.New(t)

	device := &fakeDevice{
		greeting: "Welcome to relay\nlogin ok\n>",
		respond:  func(cmd string) string { return cmd + "\nOK\n>" },
	}
	host, port := startFakeDevice(t, device)

	cfg := newTestConfig(t, host, port, WithQuiesceWindow(50*time.Millisecond))
	conn, err := NewConnection(cfg)
	require.NoError(err)

	ctx := context.Background()
	require.NoError(conn.Connect(ctx))

	// Give the greeting time to arrive before the command is issued.
	time.Sleep(20 * time.Millisecond)

	resp, err := conn.SendCommand(ctx, "STATUS", 0)
	require.NoError(err)
	require.Equal("STATUS\nOK\n>", resp)
	require.Positive(conn.Metrics().StaleBytesCount.Load())

	require.NoError(conn.Disconnect())
}

func TestStatus(t *testing.T) {
	require := require.New(t)

	device := &fakeDevice{respond: func(cmd string) string { return ">" }}
	host, port := startFakeDevice(t, device)

	cfg := newTestConfig(t, host, port)
	conn, err := NewConnection(cfg)
	require.NoError(err)

	status := conn.Status()
	require.False(status.Connected)
	require.Equal(relay.VariantTelnet, status.Variant)
	require.Equal(host+":"+strconv.Itoa(port), status.Remote)
	require.Equal(2*time.Second, status.DefaultTimeout)
	require.Equal(host, status.Parameters["host"])

	require.NoError(conn.Connect(context.Background()))

	status = conn.Status()
	require.True(status.Connected)
	require.Equal(relay.IdleState, status.SessionState)

	require.NoError(conn.Disconnect())
	require.False(conn.Status().Connected)
}
