package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgvNextAndSplit(t *testing.T) {
	a := NewArgv([]any{"core 1 2", "3"}, " ", nil)

	tok, ok := a.Next(" ")
	require.True(t, ok)
	assert.Equal(t, "core", tok)

	tok, ok = a.Next(" ")
	require.True(t, ok)
	assert.Equal(t, "1", tok)

	rest := a.Release(" ", false, false)
	assert.Equal(t, []any{"2", "3"}, rest)
}

func TestArgvSnapshotRestore(t *testing.T) {
	a := NewArgv([]any{"a b c"}, " ", nil)

	snap := a.Snapshot()

	first, _ := a.Next(" ")
	assert.Equal(t, "a", first)

	a.Restore(snap)

	first, _ = a.Next(" ")
	assert.Equal(t, "a", first, "restore should rewind to the snapshot position")
}

func TestArgvRollback(t *testing.T) {
	a := NewArgv([]any{"a b"}, " ", nil)

	tok, ok := a.Next(" ")
	require.True(t, ok)

	a.Rollback(tok, " ")

	again, ok := a.Next(" ")
	require.True(t, ok)
	assert.Equal(t, tok, again)
}

func TestArgvFingerprintStable(t *testing.T) {
	a1 := NewArgv([]any{"core", "1"}, " ", nil)
	a2 := NewArgv([]any{"core", "1"}, " ", nil)
	a3 := NewArgv([]any{"core", "2"}, " ", nil)

	assert.Equal(t, a1.Fingerprint(), a2.Fingerprint())
	assert.NotEqual(t, a1.Fingerprint(), a3.Fingerprint())
}

func TestArgvAddon(t *testing.T) {
	a := NewArgv([]any{"b c"}, " ", nil)

	a.Addon([]any{"a"})

	tok, ok := a.Next(" ")
	require.True(t, ok)
	assert.Equal(t, "a", tok)

	tok, ok = a.Next(" ")
	require.True(t, ok)
	assert.Equal(t, "b", tok)
}
