package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBindInvokedOnMatch(t *testing.T) {
	cmd := New("give", nil, MustArgs(NewArg("name", StringPattern())))

	var called string

	cmd.Bind(func(r Arparma) error {
		called = r.MainArgs["name"].(string)

		return nil
	})

	res, err := cmd.Parse("give alice")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "alice", called)
}

func TestCommandBindErrorFailsParse(t *testing.T) {
	cmd := New("give", nil, MustArgs(NewArg("name", StringPattern())))
	cmd.Bind(func(Arparma) error { return assert.AnError })

	res, err := cmd.Parse("give alice")
	require.NoError(t, err, "RaiseException defaults to false, so failures surface on the result, not the error")
	assert.False(t, res.Matched)
	assert.ErrorIs(t, res.ErrorInfo, ErrExecuteFailed)
}

func TestCommandStrictRejectsUnknownToken(t *testing.T) {
	cmd := New("give", nil, MustArgs(NewArg("name", StringPattern())))

	res, err := cmd.Parse("give alice extra")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.ErrorIs(t, res.ErrorInfo, ErrParamsUnmatched)
}

func TestCommandGetHelpListsOptions(t *testing.T) {
	cmd := New("give", nil, MustArgs(NewArg("name", StringPattern())))
	cmd.AddOption(NewOption("--verbose", MustArgs()).WithAction(StoreTrue()))
	cmd.WithMeta(Meta{Description: "gives something to someone"})

	help := cmd.GetHelp()
	assert.Contains(t, help, "give")
	assert.Contains(t, help, "gives something to someone")
	assert.Contains(t, help, "verbose")
}

func TestCommandNullMessageFails(t *testing.T) {
	cmd := New("give", nil, MustArgs())

	res, err := cmd.Parse("")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.ErrorIs(t, res.ErrorInfo, ErrNullMessage)
}
