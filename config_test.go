package chain

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigLogsHeaderMatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := DefaultConfig()
	cfg.Logger = logger

	cmd := New("give", nil, MustArgs(NewArg("name", StringPattern()))).WithConfig(cfg)

	res, err := cmd.Parse("give alice")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Contains(t, buf.String(), "header matched")
}

func TestLogDebugNoopsOnNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		logDebug(Config{}, "should not panic")
	})
}
