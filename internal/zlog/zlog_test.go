package zlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, logiface.LevelDebug)

	logger.Info().
		Str("component", "reactor").
		Int("fd", 7).
		Uint64("task", 3).
		Dur("elapsed", 1500*time.Millisecond).
		Err(errors.New("boom")).
		Log("hello")
	logger.Trace().Log("not written")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	m := lines[0]
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "hello", m["message"])
	assert.Equal(t, "reactor", m["component"])
	assert.Equal(t, float64(7), m["fd"])
	assert.Equal(t, float64(3), m["task"])
	assert.Equal(t, "boom", m["error"])
	assert.Contains(t, m, "elapsed")
	assert.Contains(t, m, "time")
}

func TestNew_LevelMapping(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, logiface.LevelTrace)

	logger.Trace().Log("t")
	logger.Debug().Log("d")
	logger.Notice().Log("n")
	logger.Warning().Log("w")
	logger.Err().Log("e")
	logger.Crit().Log("c")

	var levels []any
	for _, m := range decodeLines(t, &buf) {
		levels = append(levels, m["level"])
	}
	assert.Equal(t, []any{"trace", "debug", "warn", "warn", "error", "error"}, levels)
}

func TestNew_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, logiface.LevelDisabled)
	logger.Err().Log("nothing")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want logiface.Level
		ok   bool
	}{
		{"debug", logiface.LevelDebug, true},
		{"info", logiface.LevelInformational, true},
		{"warn", logiface.LevelWarning, true},
		{"warning", logiface.LevelWarning, true},
		{"error", logiface.LevelError, true},
		{"err", logiface.LevelError, true},
		{"trace", logiface.LevelTrace, true},
		{"off", logiface.LevelDisabled, true},
		{"verbose", logiface.LevelDisabled, false},
	} {
		got, ok := ParseLevel(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
