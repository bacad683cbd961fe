package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLoggerGatesByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerWithOutput(LevelWarn, &buf)

	l.Debug("should not appear")
	l.Info("should not appear either")
	l.Warn("warn: %s", "visible")
	l.Error("error: %d", 42)

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "[WARN] warn: visible")
	assert.Contains(t, out, "[ERROR] error: 42")
}

func TestStdLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerWithOutput(LevelError, &buf)
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestNoOpLoggerDiscardsEverything(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelInfo, l.GetLevel())
}
