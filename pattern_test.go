package chain

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternBuiltins(t *testing.T) {
	intPattern, ok := DefaultPattern("int")
	require.True(t, ok)

	res := intPattern.Validate("42")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, 42, res.Value)

	res = intPattern.Validate("nope")
	assert.Equal(t, ResultInvalid, res.Kind)
}

func TestPatternBuiltinDuration(t *testing.T) {
	durPattern, ok := DefaultPattern("duration")
	require.True(t, ok)

	res := durPattern.Validate("1h30m")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, 90*time.Minute, res.Value)

	res = durPattern.Validate("not-a-duration")
	assert.Equal(t, ResultInvalid, res.Kind)
}

func TestPatternBuiltinURL(t *testing.T) {
	urlPattern, ok := DefaultPattern("url")
	require.True(t, ok)

	res := urlPattern.Validate("https://example.com/path")
	require.Equal(t, ResultValid, res.Kind)

	u, ok := res.Value.(*url.URL)
	require.True(t, ok)
	assert.Equal(t, "example.com", u.Host)

	res = urlPattern.Validate("://bad")
	assert.Equal(t, ResultInvalid, res.Kind)
}

func TestPatternUnionLiteralShortCircuit(t *testing.T) {
	u := Union(false, Literal("on"), Literal("off"))

	res := u.Validate("on")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, "on", res.Value)

	res = u.Validate("maybe")
	assert.Equal(t, ResultInvalid, res.Kind)
}

func TestPatternUnionAnti(t *testing.T) {
	anti := Union(true, Literal("on"), Literal("off"))

	res := anti.Validate("banana")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, "banana", res.Value)

	res = anti.Validate("on")
	assert.Equal(t, ResultInvalid, res.Kind)
}

func TestPatternSequence(t *testing.T) {
	intPattern, _ := DefaultPattern("int")
	seq := Sequence(SeqList, intPattern)

	res := seq.Validate("[1,2,3]")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, []any{1, 2, 3}, res.Value)

	res = seq.Validate("(1,2,3)")
	assert.Equal(t, ResultInvalid, res.Kind)
}

func TestPatternMapping(t *testing.T) {
	strPattern := StringPattern()
	intPattern, _ := DefaultPattern("int")
	m := Mapping(strPattern, intPattern)

	res := m.Validate("{a:1,b:2}")
	require.Equal(t, ResultValid, res.Kind)

	out, ok := res.Value.(map[any]any)
	require.True(t, ok)
	assert.Equal(t, 1, out["a"])
	assert.Equal(t, 2, out["b"])
}

func TestPatternKwBool(t *testing.T) {
	p := KwBool("verbose")

	res := p.Validate("verbose")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, true, res.Value)

	res = p.Validate("noverbose")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, false, res.Value)

	res = p.Validate("other")
	assert.Equal(t, ResultInvalid, res.Kind)
}

func TestPatternRegexConvert(t *testing.T) {
	p := Regex(`(\d+)-(\d+)`, func(groups []string, _ map[string]string) (any, error) {
		return groups[0] + "/" + groups[1], nil
	})

	res := p.Validate("12-34")
	require.Equal(t, ResultValid, res.Kind)
	assert.Equal(t, "12/34", res.Value)
}

func TestChoices(t *testing.T) {
	p := Choices("red", "green", "blue")

	res := p.Validate("green")
	require.Equal(t, ResultValid, res.Kind)

	res = p.Validate("purple")
	assert.Equal(t, ResultInvalid, res.Kind)
}
