package relay

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPrompts is the prompt pattern set used when a caller supplies none.
//
// It recognizes a bare ">" optionally preceded by whitespace, and the
// alternate "=>" style prompt, both at the end of the accumulated buffer.
var DefaultPrompts = []string{`\s*=?>`}

// PromptMatcher holds the compiled disjunction of a connection's prompt
// patterns. It is immutable after construction and safe for concurrent use;
// one instance is shared by every SendCommand call on a Connector.
//
// Each pattern is a regular expression anchored to the end of the buffer at
// compile time. Patterns are combined with logical OR; any match terminates
// the read loop, so ordering only matters for the reported match span.
type PromptMatcher struct {
	patterns []string
	re       *regexp.Regexp
}

// NewPromptMatcher compiles the given prompt patterns into a single matcher.
//
// An empty or nil pattern list falls back to DefaultPrompts. An invalid
// pattern returns a *ConfigError naming the offending pattern; no partially
// compiled matcher is returned.
func NewPromptMatcher(patterns []string) (*PromptMatcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPrompts
	}

	// Compile each pattern individually so the error names the culprit.
	alts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return nil, &ConfigError{Field: "prompts", Reason: fmt.Sprintf("invalid pattern %q: %v", p, err)}
		}
		alts = append(alts, "(?:"+p+")")
	}

	re, err := regexp.Compile("(?:" + strings.Join(alts, "|") + ")$")
	if err != nil {
		// The combined form can only fail if an individual pattern did.
		return nil, &ConfigError{Field: "prompts", Reason: err.Error()}
	}

	return &PromptMatcher{
		patterns: append([]string(nil), patterns...),
		re:       re,
	}, nil
}

// Match reports whether the accumulated text ends in a recognized prompt.
func (m *PromptMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

// MatchIndex returns the start offset of the prompt match at the end of
// text, and whether a prompt was found. Callers that want the response
// without the echoed prompt can slice at the returned offset; SendCommand
// itself returns the buffer verbatim, prompt included.
func (m *PromptMatcher) MatchIndex(text string) (int, bool) {
	loc := m.re.FindStringIndex(text)
	if loc == nil {
		return 0, false
	}
	return loc[0], true
}

// Patterns returns a copy of the pattern list the matcher was built from.
func (m *PromptMatcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}
