package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, level Level) Logger {
	return NewLogger(&Config{Level: level, Component: "test", JSONFormat: true, Output: buf})
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, LevelDebug)
	log.Warn("fallback suffix",
		F("query", "bloodbath"),
		F("candidates", 2),
		F("elapsed", 3*time.Millisecond),
		Err(errors.New("exhausted")))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "warn", out["level"])
	assert.Equal(t, "fallback suffix", out["message"])
	assert.Equal(t, "test", out["component"])
	assert.Equal(t, "bloodbath", out["query"])
	assert.Equal(t, float64(2), out["candidates"])
	assert.Equal(t, "exhausted", out["error"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, LevelWarn)
	log.Info("hidden")
	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithAttachesFields(t *testing.T) {
	var buf bytes.Buffer
	log := jsonLogger(&buf, LevelInfo).With(F("locale", "en"))
	log.Info("built")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "en", out["locale"])
}

func TestLogger_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&Config{Level: LevelInfo, Output: &buf})
	log.Info("rebuild done", F("keys", 12))
	assert.Contains(t, buf.String(), "rebuild done")
	assert.Contains(t, buf.String(), "keys=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel(" DEBUG ").String())
	assert.Equal(t, "info", ParseLevel("bogus").String())
	assert.Equal(t, "error", ParseLevel("error").String())
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.With(F("a", 1)).Error("nothing", Err(errors.New("x")))
	})
}
