package relay

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-relay/internal/pool"
	"github.com/arloliu/go-relay/logger"
)

const (
	// DefaultCommandTimeout is the per-command timeout used when neither
	// the call nor the session configuration specifies one.
	DefaultCommandTimeout = 10 * time.Second

	// DefaultPollInterval is the wait between read attempts while awaiting
	// the prompt. It trades off CPU usage against response latency.
	DefaultPollInterval = 10 * time.Millisecond

	// DefaultQuiesceWindow bounds the wait for residual bytes when
	// clearing stale input before a command is written.
	DefaultQuiesceWindow = 50 * time.Millisecond

	// readChunkSize is the per-iteration read buffer size.
	readChunkSize = 512
)

// Session frames command/response exchanges over a Transport.
//
// For each command it clears stale input, writes the command, and reads
// incrementally until the PromptMatcher signals completion or the timeout
// elapses. The transport handle and the response buffer are owned by the
// session for the duration of a call; the PromptMatcher is shared read-only.
//
// A Session admits one in-flight command at a time. Concurrent SendCommand
// calls are serialized on an internal mutex, so commands on one session are
// strictly sequential.
type Session struct {
	mu        sync.Mutex
	transport Transport
	matcher   *PromptMatcher
	logger    logger.Logger

	defaultTimeout time.Duration
	pollInterval   time.Duration
	quiesce        time.Duration

	state   atomicSessionState
	metrics *SessionMetrics
}

// SessionOption customizes a Session created by NewSession.
type SessionOption func(*Session)

// WithPollInterval sets the wait between read attempts while awaiting the
// prompt. Non-positive values are ignored.
func WithPollInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithQuiesceWindow sets the bounded wait used to drain residual bytes
// before each command. Non-positive values are ignored.
func WithQuiesceWindow(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.quiesce = d
		}
	}
}

// WithSessionLogger sets the logger for the session.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionMetrics makes the session record into an externally owned
// metrics instance, so counters survive transport reconnects.
func WithSessionMetrics(m *SessionMetrics) SessionOption {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSession creates a Session over the given transport and prompt matcher.
//
// defaultTimeout is used for SendCommand calls with a zero timeout; when it
// is non-positive, DefaultCommandTimeout applies.
func NewSession(t Transport, m *PromptMatcher, defaultTimeout time.Duration, opts ...SessionOption) *Session {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultCommandTimeout
	}

	s := &Session{
		transport:      t,
		matcher:        m,
		logger:         logger.GetLogger(),
		defaultTimeout: defaultTimeout,
		pollInterval:   DefaultPollInterval,
		quiesce:        DefaultQuiesceWindow,
		metrics:        &SessionMetrics{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.state.Set(IdleState)

	return s
}

// State returns the current session state.
func (s *Session) State() SessionState { return s.state.Get() }

// Metrics returns the metrics associated with the session.
func (s *Session) Metrics() *SessionMetrics { return s.metrics }

// DefaultTimeout returns the per-command timeout used for zero-timeout calls.
func (s *Session) DefaultTimeout() time.Duration { return s.defaultTimeout }

// SendCommand writes cmd and accumulates the response until a prompt match
// or the timeout. A zero timeout uses the session default.
//
// On success the full accumulated text is returned verbatim, prompt
// included. On timeout the returned string is empty and the error is a
// *TimeoutError carrying the partial buffer. A hard transport failure
// returns a *ConnError.
func (s *Session) SendCommand(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timeout <= 0 {
		timeout = s.defaultTimeout
	}

	s.state.Set(WritingState)
	defer s.state.Set(IdleState)

	// Drop any bytes a previous exchange left behind so they cannot be
	// mistaken for part of this command's response.
	if n := s.transport.ClearInput(s.quiesce); n > 0 {
		s.metrics.addStaleBytes(n)
		s.logger.Debug("relay: discarded stale input", "bytes", n)
	}

	if !strings.HasSuffix(cmd, "\n") {
		cmd += "\n"
	}

	if err := s.transport.Write([]byte(cmd)); err != nil {
		s.metrics.incCmdErrCount()
		s.logger.Error("relay: command write failed", "error", err)

		return "", wrapConnErr("write", err)
	}

	s.metrics.incCmdSendCount()
	s.state.Set(AwaitingPromptState)
	s.logger.Debug("relay: command sent", "command", strings.TrimSpace(cmd), "timeout", timeout)

	text, err := s.awaitPrompt(ctx, timeout)
	if err != nil {
		return "", err
	}

	s.state.Set(CompleteState)
	s.metrics.incCmdRecvCount()
	s.logger.Debug("relay: response received", "bytes", len(text))

	return text, nil
}

// awaitPrompt accumulates response bytes until the prompt matcher fires or
// the timeout elapses. It is the only suspension point of an exchange.
func (s *Session) awaitPrompt(ctx context.Context, timeout time.Duration) (string, error) {
	start := time.Now()

	deadline := pool.GetTimer(timeout)
	defer pool.PutTimer(deadline)

	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	for {
		n, err := s.transport.ReadAvailable(chunk)
		if err != nil {
			s.metrics.incCmdErrCount()
			s.logger.Error("relay: response read failed", "error", err)

			return "", wrapConnErr("read", err)
		}

		if n > 0 {
			buf = append(buf, chunk[:n]...)
			s.metrics.addBytesRead(n)

			// The prompt characters are ASCII, so sanitizing a buffer
			// that may end mid-rune cannot mask a prompt match.
			text := sanitize(buf)
			if s.matcher.Match(text) {
				return text, nil
			}
		}

		// Deadline check also covers the data-trickling path where
		// ReadAvailable keeps returning bytes without a prompt.
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			return "", s.timeoutErr(timeout, start, buf)
		default:
		}

		if n > 0 {
			continue
		}

		// Idle line: wait one poll interval instead of busy-spinning.
		wait := pool.GetTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			pool.PutTimer(wait)

			return "", ctx.Err()
		case <-deadline.C:
			pool.PutTimer(wait)

			return "", s.timeoutErr(timeout, start, buf)
		case <-wait.C:
		}
		pool.PutTimer(wait)
	}
}

func (s *Session) timeoutErr(timeout time.Duration, start time.Time, buf []byte) error {
	s.state.Set(TimedOutState)
	s.metrics.incCmdTimeoutCount()

	partial := sanitize(buf)
	s.logger.Warn("relay: command timeout",
		"timeout", timeout,
		"partialBytes", len(partial))

	return &TimeoutError{
		Timeout: timeout,
		Elapsed: time.Since(start),
		Partial: partial,
	}
}

// sanitize decodes the response buffer as UTF-8, replacing undecodable
// bytes with U+FFFD instead of aborting the read.
func sanitize(buf []byte) string {
	return strings.ToValidUTF8(string(buf), "�")
}

func wrapConnErr(op string, err error) error {
	return &ConnError{Op: op, Err: err}
}
