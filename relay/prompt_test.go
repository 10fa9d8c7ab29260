package relay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptMatcherDefaults(t *testing.T) {
	require := require.New(t)

	m, err := NewPromptMatcher(nil)
	require.NoError(err)

	t.Run("BarePrompt", func(t *testing.T) {
		require.True(m.Match(">"))
		require.True(m.Match("STATUS\nOK\n>"))
		require.True(m.Match("STATUS\nOK\n  >"))
	})

	t.Run("ArrowPrompt", func(t *testing.T) {
		require.True(m.Match("=>"))
		require.True(m.Match("output\n=>"))
	})

	t.Run("NoPrematureCompletion", func(t *testing.T) {
		require.False(m.Match(""))
		require.False(m.Match("still producing output"))
		// A prompt in the middle of the buffer is not end-of-response.
		require.False(m.Match("a > b"))
		require.False(m.Match(">\nmore output"))
	})
}

func TestPromptMatcherCustomPatterns(t *testing.T) {
	require := require.New(t)

	m, err := NewPromptMatcher([]string{`RELAY#`, `\$\s?`})
	require.NoError(err)

	require.True(m.Match("login ok\nRELAY#"))
	require.True(m.Match("done\n$ "))
	require.False(m.Match("RELAY# booting"))

	// Any member of the set terminates the read loop.
	for _, text := range []string{"RELAY#", "$"} {
		require.True(m.Match(text), "pattern set should match %q", text)
	}
}

func TestPromptMatcherMatchIndex(t *testing.T) {
	require := require.New(t)

	m, err := NewPromptMatcher([]string{`=>`})
	require.NoError(err)

	start, ok := m.MatchIndex("VOLTS 120.5\n=>")
	require.True(ok)
	require.Equal("VOLTS 120.5\n", "VOLTS 120.5\n=>"[:start])

	_, ok = m.MatchIndex("VOLTS 120.5")
	require.False(ok)
}

func TestPromptMatcherInvalidPattern(t *testing.T) {
	require := require.New(t)

	m, err := NewPromptMatcher([]string{`>`, `[unclosed`})
	require.Nil(m)
	require.ErrorIs(err, ErrConfigInvalid)

	var cfgErr *ConfigError
	require.True(errors.As(err, &cfgErr))
	require.Equal("prompts", cfgErr.Field)
	require.Contains(cfgErr.Reason, "[unclosed")
}

func TestPromptMatcherPatterns(t *testing.T) {
	require := require.New(t)

	patterns := []string{`>`, `=>`}
	m, err := NewPromptMatcher(patterns)
	require.NoError(err)
	require.Equal(patterns, m.Patterns())

	// The returned slice is a copy; mutating it must not affect the matcher.
	m.Patterns()[0] = `#`
	require.Equal(patterns, m.Patterns())
}
