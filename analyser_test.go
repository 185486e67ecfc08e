package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioBasicOptionAndPositional covers spec.md's E1: a positional
// argument with a defaulted trailing argument, plus a store_true option.
func TestScenarioBasicOptionAndPositional(t *testing.T) {
	strPattern := StringPattern()
	intPattern, _ := DefaultPattern("int")

	args := MustArgs(
		NewArg("name", strPattern),
		NewArg("count", intPattern).WithDefault(1),
	)

	cmd := New("give", nil, args)
	cmd.AddOption(NewOption("--verbose", MustArgs()).WithAction(StoreTrue()))

	res, err := cmd.Parse("give alice --verbose")
	require.NoError(t, err)
	require.True(t, res.Matched)

	assert.Equal(t, "alice", res.MainArgs["name"])
	assert.Equal(t, 1, res.MainArgs["count"])
	assert.Equal(t, true, res.Options["verbose"].Value)
}

// TestScenarioCompactOption covers spec.md's E2: a compact-form option
// whose name and first argument are fused with no separator ("n42").
func TestScenarioCompactOption(t *testing.T) {
	intPattern, _ := DefaultPattern("int")

	cmd := New("add", nil, MustArgs())
	cmd.AddOption(NewOption("n", MustArgs(NewArg("count", intPattern))).MakeCompact())

	res, err := cmd.Parse("add n42")
	require.NoError(t, err)
	require.True(t, res.Matched)

	assert.Equal(t, 42, res.Options["n"].Args["count"])
}

// TestScenarioVariadicPositional covers spec.md's E3: a "*" variadic
// positional argument greedily consuming every remaining token.
func TestScenarioVariadicPositional(t *testing.T) {
	strPattern := StringPattern()

	args := MustArgs(
		NewArg("tags", strPattern).Variadic(Multi{Kind: MultiStar}),
	)

	cmd := New("items", nil, args)

	res, err := cmd.Parse("items a b c")
	require.NoError(t, err)
	require.True(t, res.Matched)

	assert.Equal(t, []any{"a", "b", "c"}, res.MainArgs["tags"])
}

// TestScenarioSubcommandNesting covers spec.md's E4: a nested Subcommand
// with its own positional Args, bound independently of the root.
func TestScenarioSubcommandNesting(t *testing.T) {
	strPattern := StringPattern()

	cmd := New("user", nil, MustArgs())
	cmd.AddSubcommand(NewSubcommand("add", MustArgs(NewArg("name", strPattern))))

	res, err := cmd.Parse("user add bob")
	require.NoError(t, err)
	require.True(t, res.Matched)

	sub, ok := res.Subcommands["add"]
	require.True(t, ok)
	assert.Equal(t, "bob", sub.Args["name"])
}

// TestScenarioShortcutExpansion covers spec.md's E5: a literal shortcut
// key expanding into a rewritten command line before re-entering the
// header phase.
func TestScenarioShortcutExpansion(t *testing.T) {
	strPattern := StringPattern()
	intPattern, _ := DefaultPattern("int")

	args := MustArgs(
		NewArg("name", strPattern),
		NewArg("count", intPattern).WithDefault(1),
	)

	cmd := New("give", nil, args)
	cmd.Shortcut("gb", ShortcutSpec{Command: "give", Args: []string{"bob", "{%0}"}}, false)

	res, err := cmd.Parse("gb 7")
	require.NoError(t, err)
	require.True(t, res.Matched)

	assert.Equal(t, "bob", res.MainArgs["name"])
	assert.Equal(t, 7, res.MainArgs["count"])
}

// TestScenarioCompletionPauseResume covers spec.md's E6: a CompletionSession
// pausing on a missing required argument and resuming correctly once the
// caller supplies it, without re-matching the already-consumed header.
func TestScenarioCompletionPauseResume(t *testing.T) {
	strPattern := StringPattern()

	cmd := New("give", nil, MustArgs(NewArg("name", strPattern)))

	session, err := NewCompletionSession(cmd, "give")
	require.NoError(t, err)
	require.False(t, session.Done(), "missing required name argument should pause, not fail")

	result := session.Enter(strPtr("alice"))
	require.False(t, result.Paused)
	require.NoError(t, result.Err)
	require.NotNil(t, result.Result)

	assert.True(t, result.Result.Matched)
	assert.Equal(t, "alice", result.Result.MainArgs["name"])
}

// TestRequiresPathGatesOption covers spec.md §4.5 step 3: an option
// declared with WithRequires is only valid once its sentence path has been
// walked, and is otherwise rejected as if it were never declared.
func TestRequiresPathGatesOption(t *testing.T) {
	cmd := New("give", nil, MustArgs())
	cmd.AddOption(NewOption("--force", MustArgs()).WithAction(StoreTrue()).WithRequires("confirm"))

	res, err := cmd.Parse("give confirm --force")
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, true, res.Options["force"].Value)

	res, err = cmd.Parse("give --force")
	require.NoError(t, err)
	assert.False(t, res.Matched, "--force must be rejected when its requires path was never walked")
	assert.ErrorIs(t, res.ErrorInfo, ErrParamsUnmatched)
}

// TestSoftKeywordSubcommandFallsThroughToOwnArgs covers spec.md §4.5's
// soft-keyword behaviour: a subcommand literal that collides with a name
// the caller also wants to accept as a plain positional value must bind as
// that value while the body's own args are still unconsumed, rather than
// always being claimed as a dispatch target.
func TestSoftKeywordSubcommandFallsThroughToOwnArgs(t *testing.T) {
	strPattern := StringPattern()

	cmd := New("status", nil, MustArgs(NewArg("state", strPattern)))
	cmd.AddSubcommand(NewSubcommand("add", MustArgs(NewArg("name", strPattern))).MakeSoftKeyword())

	res, err := cmd.Parse("status add")
	require.NoError(t, err)
	require.True(t, res.Matched)

	assert.Equal(t, "add", res.MainArgs["state"], "soft-keyword literal should bind as the own-args value, not dispatch to the subcommand")
	_, dispatched := res.Subcommands["add"]
	assert.False(t, dispatched, "subcommand must not have been entered once its literal was claimed by own-args binding")
}

// TestSoftKeywordSubcommandStillDispatchesOnceOwnArgsConsumed covers the
// complementary case: once the body's own args have already been bound in
// an earlier iteration, the same soft-keyword literal must dispatch.
func TestSoftKeywordSubcommandStillDispatchesOnceOwnArgsConsumed(t *testing.T) {
	strPattern := StringPattern()

	cmd := New("status", nil, MustArgs(NewArg("state", strPattern)))
	cmd.AddSubcommand(NewSubcommand("add", MustArgs(NewArg("name", strPattern))).MakeSoftKeyword())

	res, err := cmd.Parse("status idle add bob")
	require.NoError(t, err)
	require.True(t, res.Matched)

	assert.Equal(t, "idle", res.MainArgs["state"])

	sub, ok := res.Subcommands["add"]
	require.True(t, ok, "once own args are bound, the soft-keyword literal must dispatch to its subcommand")
	assert.Equal(t, "bob", sub.Args["name"])
}

// TestContextInterpolationBracketStyle covers spec.md §4.2: a "{name}"
// token is resolved against the Argv's Context rather than validated as a
// literal string.
func TestContextInterpolationBracketStyle(t *testing.T) {
	strPattern := StringPattern()

	cmd := New("give", nil, MustArgs(NewArg("name", strPattern)))
	cmd.Config.ContextStyle = ContextStyleBracket

	ctx := NewContext(map[string]any{"target": "alice"})

	res, err := cmd.ParseWithContext("give {target}", ctx)
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, "alice", res.MainArgs["name"])
}

// TestContextInterpolationUnresolvedNameFails covers spec.md §4.2: an
// active ContextStyle raises ArgumentMissing when the named value is not
// present in Context, rather than falling back to literal validation.
func TestContextInterpolationUnresolvedNameFails(t *testing.T) {
	strPattern := StringPattern()

	cmd := New("give", nil, MustArgs(NewArg("name", strPattern)))
	cmd.Config.ContextStyle = ContextStyleBracket

	ctx := NewContext(nil)

	res, err := cmd.ParseWithContext("give {target}", ctx)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.ErrorIs(t, res.ErrorInfo, ErrArgumentMissing)
}

// TestContextInterpolationDisabledByDefault covers spec.md §4.2: with
// ContextStyleNone (the zero value), a brace token is validated literally
// and never consulted against Context.
func TestContextInterpolationDisabledByDefault(t *testing.T) {
	strPattern := StringPattern()

	cmd := New("give", nil, MustArgs(NewArg("name", strPattern)))

	res, err := cmd.Parse("give {target}")
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, "{target}", res.MainArgs["name"])
}

func strPtr(s string) *string { return &s }
