package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/momentics/hioload-thread/control"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" INFO ":  zapcore.InfoLevel,
		"Warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
		"":        zapcore.WarnLevel,
		"chatty":  zapcore.WarnLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in, zapcore.WarnLevel), "input %q", in)
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "thread.log")
	logger, err := New(control.LogConfig{Level: "debug", File: logPath, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Info("thread started", zap.String("thread", "demux"), zap.Int("tid", 42))
	logger.Debug("debug line")
	_ = logger.Sync() // syncing stderr may fail on some platforms

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "thread started", entry["msg"])
	assert.Equal(t, "demux", entry["thread"])
	assert.EqualValues(t, 42, entry["tid"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewRespectsLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "thread.log")
	logger, err := New(control.LogConfig{Level: "error", File: logPath})
	require.NoError(t, err)
	logger.Warn("dropped")
	logger.Error("kept")
	_ = logger.Sync()

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dropped")
	assert.Contains(t, string(raw), "kept")
}

func TestNewFileWriterCarriesRotation(t *testing.T) {
	w := NewFileWriter(control.LogConfig{File: "x.log", MaxSizeMB: 7, MaxBackups: 2, MaxAgeDays: 3, Compress: true})
	assert.Equal(t, "x.log", w.Filename)
	assert.Equal(t, 7, w.MaxSize)
	assert.Equal(t, 2, w.MaxBackups)
	assert.Equal(t, 3, w.MaxAge)
	assert.True(t, w.Compress)
}
