package relay

import "sync/atomic"

// SessionState represents the stage of the current (or last) command
// exchange on a Session.
type SessionState uint32

// Session states. Complete and TimedOut are terminal for one exchange; the
// session returns to IdleState before the next command.
const (
	// IdleState indicates no command exchange is in progress.
	IdleState SessionState = iota
	// WritingState indicates the command bytes are being written.
	WritingState
	// AwaitingPromptState indicates the response is being accumulated.
	AwaitingPromptState
	// CompleteState indicates the last exchange ended with a prompt match.
	CompleteState
	// TimedOutState indicates the last exchange ended without a prompt.
	TimedOutState
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case IdleState:
		return "idle"
	case WritingState:
		return "writing"
	case AwaitingPromptState:
		return "awaiting-prompt"
	case CompleteState:
		return "complete"
	case TimedOutState:
		return "timed-out"
	default:
		return "unknown"
	}
}

// atomicSessionState wraps atomic access to a SessionState.
type atomicSessionState struct {
	v atomic.Uint32
}

func (a *atomicSessionState) Set(s SessionState) { a.v.Store(uint32(s)) }
func (a *atomicSessionState) Get() SessionState  { return SessionState(a.v.Load()) }
