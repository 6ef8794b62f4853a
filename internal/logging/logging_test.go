package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesJSONToNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, lv, err := New(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "resolution", 40)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "voxelfield", rec["service"])
	assert.Equal(t, float64(40), rec["resolution"])

	lv.Set(slog.LevelDebug)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Config{Output: &buf})
	require.NoError(t, err)

	r := NewReporter(logger)
	assert.Equal(t, 0, r.Failures())
	assert.Nil(t, r.Last())

	cause := errors.New("boom")
	r.Report("error during density sampling", cause)

	assert.Equal(t, 1, r.Failures())
	assert.ErrorIs(t, r.Last(), cause)
	assert.Contains(t, buf.String(), "error during density sampling")
	assert.Contains(t, buf.String(), "boom")
}
