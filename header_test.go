package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLiteralMatch(t *testing.T) {
	h := NewHeader("core", "!", "?")

	m := h.match("!core", defaultTextOf)
	assert.True(t, m.Matched)

	m = h.match("core", defaultTextOf)
	assert.False(t, m.Matched, "command without a registered prefix should not match")
}

func TestHeaderBracketPlaceholder(t *testing.T) {
	h := NewHeader("give {target:str} {count:int}")

	m := h.match("give player 5", defaultTextOf)
	require.True(t, m.Matched)
	assert.Equal(t, "player", m.Groups["target"])
	assert.Equal(t, "5", m.Groups["count"])
}

func TestHeaderCompact(t *testing.T) {
	h := NewHeader("core").MakeCompact()

	m := h.match("core42", defaultTextOf)
	require.True(t, m.Matched)
	assert.Equal(t, "42", m.Rest)
}

func TestHeaderCandidatesForFuzzy(t *testing.T) {
	h := NewHeader("core", "!")

	cands := h.candidates()
	assert.Contains(t, cands, "!core")
}

// mention is an opaque message element, standing in for something like a
// chat platform's "@bot" mention object that carries no useful string form
// of its own.
type mention struct{ botID string }

func TestHeaderPairMatch(t *testing.T) {
	isBot := func(v any) bool {
		m, ok := v.(mention)

		return ok && m.botID == "bot-1"
	}

	h := NewPairHeader("give", isBot)

	m := h.matchPair(mention{botID: "bot-1"}, "give", defaultTextOf)
	assert.True(t, m.Matched)

	m = h.matchPair(mention{botID: "other-bot"}, "give", defaultTextOf)
	assert.False(t, m.Matched, "a prefix the predicate rejects must not match")

	m = h.matchPair(mention{botID: "bot-1"}, "take", defaultTextOf)
	assert.False(t, m.Matched, "a mismatched command token must not match even with an accepted prefix")
}

func TestAnalyseHeaderPairConsumesBothTokens(t *testing.T) {
	isBot := func(v any) bool {
		m, ok := v.(mention)

		return ok && m.botID == "bot-1"
	}

	h := NewPairHeader("give", isBot)
	argv := NewArgv([]any{mention{botID: "bot-1"}, "give", "alice"}, " ", defaultTextOf)

	hr, err := analyseHeader(h, argv, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, hr.Matched)

	tok, ok := argv.Next(" ")
	require.True(t, ok)
	assert.Equal(t, "alice", tok, "only the prefix and command tokens should have been consumed")
}

func TestAnalyseHeaderPairRejectsWrongPrefix(t *testing.T) {
	isBot := func(v any) bool {
		m, ok := v.(mention)

		return ok && m.botID == "bot-1"
	}

	h := NewPairHeader("give", isBot)
	argv := NewArgv([]any{mention{botID: "intruder"}, "give", "alice"}, " ", defaultTextOf)

	_, err := analyseHeader(h, argv, DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}
