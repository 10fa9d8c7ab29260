package relay

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	require := require.New(t)

	t.Run("ConfigError", func(t *testing.T) {
		err := error(&ConfigError{Field: "host", Reason: "host is required"})
		require.ErrorIs(err, ErrConfigInvalid)
		require.NotErrorIs(err, ErrConnFailed)
		require.Contains(err.Error(), "host")
	})

	t.Run("ConnError", func(t *testing.T) {
		underlying := errors.New("connection refused")
		err := error(&ConnError{Op: "open", Err: underlying})
		require.ErrorIs(err, ErrConnFailed)
		require.ErrorIs(err, underlying)
		require.Contains(err.Error(), "open")
	})

	t.Run("TimeoutError", func(t *testing.T) {
		err := error(&TimeoutError{
			Timeout: time.Second,
			Elapsed: 1100 * time.Millisecond,
			Partial: "partial output",
		})
		require.ErrorIs(err, ErrCommandTimeout)
		require.NotErrorIs(err, ErrConnFailed)

		var timeoutErr *TimeoutError
		require.True(errors.As(err, &timeoutErr))
		require.Equal("partial output", timeoutErr.Partial)
	})
}

func TestSessionStateString(t *testing.T) {
	require := require.New(t)

	require.Equal("idle", IdleState.String())
	require.Equal("writing", WritingState.String())
	require.Equal("awaiting-prompt", AwaitingPromptState.String())
	require.Equal("complete", CompleteState.String())
	require.Equal("timed-out", TimedOutState.String())
	require.Equal("unknown", SessionState(99).String())
}
