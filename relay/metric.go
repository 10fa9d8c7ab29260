package relay

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for a command session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// CmdSendCount indicates the number of commands written.
	CmdSendCount atomic.Uint64
	// CmdRecvCount indicates the number of prompt-terminated responses.
	CmdRecvCount atomic.Uint64
	// CmdTimeoutCount indicates the number of command timeouts.
	CmdTimeoutCount atomic.Uint64
	// CmdErrCount indicates the number of hard I/O failures during commands.
	CmdErrCount atomic.Uint64

	// BytesReadCount indicates the total response bytes read.
	BytesReadCount atomic.Uint64
	// StaleBytesCount indicates the bytes discarded by pre-command input
	// clearing.
	StaleBytesCount atomic.Uint64
}

func (m *SessionMetrics) incCmdSendCount()    { m.CmdSendCount.Add(1) }
func (m *SessionMetrics) incCmdRecvCount()    { m.CmdRecvCount.Add(1) }
func (m *SessionMetrics) incCmdTimeoutCount() { m.CmdTimeoutCount.Add(1) }
func (m *SessionMetrics) incCmdErrCount()     { m.CmdErrCount.Add(1) }

func (m *SessionMetrics) addBytesRead(n int)  { m.BytesReadCount.Add(uint64(n)) }
func (m *SessionMetrics) addStaleBytes(n int) { m.StaleBytesCount.Add(uint64(n)) }
