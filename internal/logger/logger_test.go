package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json", false)

	Info("upload received", KeySession, "abc123", KeySize, 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "upload received", entry["msg"])
	assert.Equal(t, "abc123", entry[KeySession])
	assert.Equal(t, float64(42), entry[KeySize])
	assert.Equal(t, "INFO", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "json", false)

	Debug("hidden")
	Info("hidden too")
	Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestSetLevelTakesEffect(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "ERROR", "json", false)

	Info("before")
	SetLevel("DEBUG")
	Debug("after")

	out := buf.String()
	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "after")
}

func TestInvalidLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json", false)

	SetLevel("LOUD")
	Info("still works")

	assert.Contains(t, buf.String(), "still works")
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	Info("session opened", KeyClientIP, "10.0.0.1")

	line := buf.String()
	assert.True(t, strings.Contains(line, "session opened"), "got: %s", line)
	assert.Contains(t, line, "10.0.0.1")
	assert.NotContains(t, line, "\x1b[", "color disabled")
}

func TestTextFormatColor(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", true)

	Warn("queue full", KeySize, 64)

	line := buf.String()
	assert.Contains(t, line, "[\x1b[33mWARN\x1b[0m]")
	assert.Contains(t, line, "\x1b[36m"+KeySize+"\x1b[0m=64")
}
