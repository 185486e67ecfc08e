package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsOrderingInvariants(t *testing.T) {
	intPattern, _ := DefaultPattern("int")

	t.Run("optional must trail", func(t *testing.T) {
		_, err := NewArgs(
			NewArg("a", intPattern).WithDefault(0),
			NewArg("b", intPattern),
		)
		assert.ErrorIs(t, err, ErrOptionalNotTrailing)
	})

	t.Run("at most one variadic positional", func(t *testing.T) {
		_, err := NewArgs(
			NewArg("a", intPattern).Variadic(Multi{Kind: MultiStar}),
			NewArg("b", intPattern).Variadic(Multi{Kind: MultiStar}),
		)
		assert.ErrorIs(t, err, ErrMultipleVariadicPositional)
	})

	t.Run("keyword-only must trail positionals", func(t *testing.T) {
		_, err := NewArgs(
			NewArg("a", intPattern).KeywordOnly(),
			NewArg("b", intPattern),
		)
		assert.ErrorIs(t, err, ErrKeywordOnlyOrder)
	})

	t.Run("default must satisfy its own pattern", func(t *testing.T) {
		_, err := NewArgs(NewArg("a", intPattern).WithDefault("not-an-int"))
		assert.ErrorIs(t, err, ErrDefaultUnmatch)
	})

	t.Run("valid schema", func(t *testing.T) {
		args, err := NewArgs(
			NewArg("a", intPattern),
			NewArg("b", intPattern).WithDefault(7),
		)
		require.NoError(t, err)
		assert.Len(t, args.Normal(), 2)
		assert.Equal(t, 1, args.OptionalCount())
	})
}

func TestArgsConcat(t *testing.T) {
	intPattern, _ := DefaultPattern("int")

	left := MustArgs(NewArg("a", intPattern))
	right := MustArgs(NewArg("b", intPattern).WithDefault(1))

	combined, err := left.Concat(right)
	require.NoError(t, err)
	assert.Equal(t, 2, combined.Len())
}
