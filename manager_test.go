package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegisterAndResolve(t *testing.T) {
	mgr := NewManager(8)
	cmd := New("give", nil, MustArgs())

	require.NoError(t, mgr.Register("demo", "give", cmd))

	got, ok := mgr.Resolve("demo", "give")
	require.True(t, ok)
	assert.Same(t, cmd, got)
	assert.Equal(t, "demo", cmd.Namespace)

	_, err := mgr.Require("demo", "missing")
	assert.Error(t, err)
}

func TestManagerMaxCount(t *testing.T) {
	mgr := NewManager(8)
	mgr.SetMaxCount("demo", 1)

	require.NoError(t, mgr.Register("demo", "a", New("a", nil, MustArgs())))

	err := mgr.Register("demo", "b", New("b", nil, MustArgs()))
	assert.ErrorIs(t, err, errExceedMaxCount)
}

func TestManagerDisableList(t *testing.T) {
	mgr := NewManager(8)

	assert.False(t, mgr.IsDisable("demo"))

	mgr.Disable("demo")
	assert.True(t, mgr.IsDisable("demo"))

	mgr.Enable("demo")
	assert.False(t, mgr.IsDisable("demo"))
}

func TestManagerLRUCacheEviction(t *testing.T) {
	c := newLRUCache(2)

	c.put(1, Arparma{Matched: true})
	c.put(2, Arparma{Matched: true})
	c.put(3, Arparma{Matched: true}) // evicts key 1, the least recently used

	_, ok := c.get(1)
	assert.False(t, ok)

	_, ok = c.get(2)
	assert.True(t, ok)

	_, ok = c.get(3)
	assert.True(t, ok)
}

func TestManagerParseCachedPopulatesOnMatch(t *testing.T) {
	mgr := NewManager(8)

	cmd := New("give", nil, MustArgs(NewArg("name", StringPattern())))
	cmd.Config.EnableMessageCache = true
	require.NoError(t, mgr.Register("demo", "give", cmd))

	res, err := mgr.ParseCached(cmd, "give alice")
	require.NoError(t, err)
	require.True(t, res.Matched)

	tokens, err := cmd.toTokens("give alice")
	require.NoError(t, err)

	fp := GenerateToken(tokens)

	cached, ok := mgr.GetRecord("demo", fp)
	require.True(t, ok)
	assert.Equal(t, "alice", cached.MainArgs["name"])
}
