package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(0, "json", &buf)

	l.Info("hello", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestNewWithFormat_TextFallback(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(0, "yaml", &buf)

	l.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewWithFormat_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(int(slog.LevelWarn), "text", &buf)

	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithFormat(0, "text", &buf).With("component", "auth")

	l.Info("hello")

	assert.Contains(t, buf.String(), "component=auth")
}
