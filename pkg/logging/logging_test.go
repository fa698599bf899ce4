package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormats(t *testing.T) {
	defer SetVerbosity(slog.LevelInfo)()

	var buf bytes.Buffer
	logger, err := New(&buf, FormatJSON)
	require.NoError(t, err)
	logger.Info("built", "rows", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "built", rec["msg"])
	assert.EqualValues(t, 3, rec["rows"])

	buf.Reset()
	logger, err = New(&buf, "")
	require.NoError(t, err)
	logger.Info("built", "rows", 3)
	assert.Contains(t, buf.String(), "msg=built")

	_, err = New(&buf, "xml")
	assert.Error(t, err)
}

func TestSetVerbosityRestores(t *testing.T) {
	before := Level()
	var buf bytes.Buffer
	logger, err := New(&buf, FormatText)
	require.NoError(t, err)

	restore := SetVerbosity(slog.LevelDebug)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	restore()
	assert.Equal(t, before, Level())

	buf.Reset()
	defer SetVerbosity(slog.LevelWarn)()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, LevelFor(0))
	assert.Equal(t, slog.LevelInfo, LevelFor(1))
	assert.Equal(t, slog.LevelDebug, LevelFor(2))
	assert.Equal(t, slog.LevelDebug, LevelFor(5))
}

func TestNoop(t *testing.T) {
	assert.False(t, Noop().Enabled(context.Background(), slog.LevelError))
}
