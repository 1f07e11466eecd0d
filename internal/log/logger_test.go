package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level Level, jsonOutput bool) *DefaultLogger {
	l := New(Config{Level: level, JSONOutput: jsonOutput, Output: buf})
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, InfoLevel, false)

	l.Debug("hidden")
	l.Info("trace finished", "file", "a.js", "nodes", 3)
	l.Warn("unhandled node", "kind", "with statement")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[2024-01-02 03:04:05] INFO: trace finished file=a.js nodes=3\n")
	assert.Contains(t, out, `WARN: unhandled node kind="with statement"`)
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, DebugLevel, true)

	l.Error("load failed", "path", "b.ts", "err", errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "load failed", entry["message"])
	assert.Equal(t, "b.ts", entry["path"])
	assert.Equal(t, "boom", entry["err"])
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, InfoLevel, false)

	child := l.With("rule", "xss")
	child.Info("issue")
	l.Info("plain")

	assert.Contains(t, buf.String(), "INFO: issue rule=xss\n")
	assert.Contains(t, buf.String(), "INFO: plain\n")
}

func TestLogger_OddArgs(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, InfoLevel, false)
	l.Info("msg", "lonely")
	assert.Contains(t, buf.String(), "msg extra=lonely")
}

func TestLogger_Enabled(t *testing.T) {
	l := New(Config{Level: WarnLevel, Output: &bytes.Buffer{}})
	assert.False(t, l.Enabled(InfoLevel))
	assert.True(t, l.Enabled(ErrorLevel))
	assert.False(t, Nop().Enabled(ErrorLevel))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
