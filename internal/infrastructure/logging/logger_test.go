package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"loan-servicing/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewLoggerJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := newLogger(config.LoggerConfig{Level: "warn", Encoding: "json"}, buf)

	logger.Info("dropped")
	logger.Warn("kept", "loan_id", "L-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "L-1", entry["loan_id"])
}

func TestNewLoggerText(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := newLogger(config.LoggerConfig{Level: "info", Encoding: "text"}, buf)

	logger.Info("hello", "component", "test")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "component=test")
}
