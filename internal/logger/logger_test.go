package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", &buf)
	l.Info("hidden")
	l.Warn("row rejected", "ledger", "Suspense")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "row rejected", rec["msg"])
	assert.Equal(t, "Suspense", rec["ledger"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestNewInvalidLevelWarns(t *testing.T) {
	var buf bytes.Buffer
	New("loud", &buf)
	assert.Contains(t, buf.String(), "invalid log level")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", &buf)

	ctx := ToContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	ctx = With(ctx, "run_id", "abc")
	FromContext(ctx).Debug("step")
	assert.Contains(t, buf.String(), `"run_id":"abc"`)
}

func TestFromContextDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
