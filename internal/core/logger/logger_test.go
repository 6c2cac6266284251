package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"book-catalog-api/internal/core/config"
)

func TestBuildLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := buildLogger(Options{Level: "info", JSON: true, Out: zapcore.AddSync(&buf)})
	defer cleanup()

	l.Debug("hidden")
	l.Info("book created", zap.String("id", "b-1"))
	_ = l.Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "book created", rec["msg"])
	assert.Equal(t, "b-1", rec["id"])
	assert.Contains(t, rec, "ts")
}

func TestBuildLogger_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, _ := buildLogger(Options{Level: "loud", JSON: true, Out: zapcore.AddSync(&buf)})
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromConfig_Rotate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{Level: "info", JSON: true, File: config.LogFile{Filename: file, MaxSizeMB: 1}})
	l.Info("to file")
	cleanup()
	assert.FileExists(t, file)
}

func TestToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, _ := buildLogger(Options{Level: "info", JSON: true, Out: zapcore.AddSync(&buf)})
	std := log.New(ToWriter(l, zapcore.WarnLevel), "", 0)
	std.Println("legacy line")
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "legacy line")
}
