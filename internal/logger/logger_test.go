package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFormatWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: LevelInfo, Format: "json", Output: &buf})
	require.NoError(t, err)

	l.Info().Str("foo", "bar").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "bar", line["foo"])
}

func TestNewConsoleFormatIsDefault(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: LevelInfo, Output: &buf})
	require.NoError(t, err)

	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestNewUnknownFormatErrors(t *testing.T) {
	_, err := New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: LevelWarn, Format: "json", Output: &buf})
	require.NoError(t, err)

	l.Info().Msg("should not appear")
	assert.Empty(t, strings.TrimSpace(buf.String()))

	l.Warn().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestForRunAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Level: LevelInfo, Format: "json", Output: &buf})
	require.NoError(t, err)

	run := ForRun(base, "run-1", "claude")
	run.Info().Msg("x")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "run-1", line["run_id"])
	assert.Equal(t, "claude", line["agent"])
}

func TestForIterationAttachesField(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Level: LevelInfo, Format: "json", Output: &buf})
	require.NoError(t, err)

	run := ForRun(base, "run-1", "claude")
	it := ForIteration(run, 3)
	it.Info().Msg("x")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(3), line["iteration"])
}
