package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{" DEBUG ", LogLevelDebug},
		{"TRACE", LogLevelTrace},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelWarn, &buf)

	logger.Info("hidden %d", 1)
	logger.Debug("hidden")
	logger.Warn("shown %s", "warn")
	logger.Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown warn")
	assert.Contains(t, out, "[ERROR] shown error")
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelInfo, &buf).With("Pipeline")

	logger.Info("rows=%d", 3)

	assert.Equal(t, "[INFO] [Pipeline] rows=3\n", buf.String())
	assert.Equal(t, LogLevelInfo, logger.GetLevel())
}
