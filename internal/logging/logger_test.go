package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewJSONIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Format: "json", Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	ctx := WithRequestID(context.Background(), "req-42")
	logger.InfoContext(ctx, "hello", "kind", "weather")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-42", rec["request_id"])
	assert.Equal(t, "weather", rec["kind"])
}

func TestNewWritesFileAndConsole(t *testing.T) {
	var buf bytes.Buffer
	p := filepath.Join(t.TempDir(), "logs", "agriassist.log")
	logger, closer, err := New(Options{Format: "text", File: p, Console: &buf})
	require.NoError(t, err)
	logger.With("run_id", "abc").Warn("crop images folder not found")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "run_id=abc")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestNewFileOnly(t *testing.T) {
	var buf bytes.Buffer
	p := filepath.Join(t.TempDir(), "only.log")
	logger, closer, err := New(Options{File: p, FileOnly: true, Console: &buf})
	require.NoError(t, err)
	logger.Info("x")
	require.NoError(t, closer.Close())
	assert.Empty(t, buf.String())
}

func TestRequestIDEmpty(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}
