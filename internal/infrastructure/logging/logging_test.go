package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	noColor := false
	return slog.New(NewMavenHandler(buf, &MavenOptions{Level: level, HideTime: true, Color: &noColor}))
}

func TestMavenHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo)

	logger.Info("reconciliation complete", "claims", 3, "mode", "receivables")

	assert.Equal(t, "[INFO] reconciliation complete claims=3 mode=receivables\n", buf.String())
}

func TestMavenHandler_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelInfo).With(ComponentKey, "engine", "run_id", "r-1")

	logger.Warn("claim left open", "claim_id", "INV-9")

	assert.Equal(t, "[WARN] [engine] claim left open run_id=r-1 claim_id=INV-9\n", buf.String())
}

func TestMavenHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Error("shown")

	assert.Equal(t, "[ERROR] shown\n", buf.String())
}

func TestMavenHandler_GroupsAndQuoting(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, slog.LevelDebug).WithGroup("claim")

	logger.Debug("scored", "id", "INV-1", slog.Group("best", "settlement", "PAY-1", "score", 88.8), "name", "Acme Corp")

	assert.Equal(t, `[DEBUG] scored claim.id=INV-1 claim.best.settlement=PAY-1 claim.best.score=88.8 claim.name="Acme Corp"`+"\n", buf.String())
}

func TestMavenHandler_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	noColor := false
	logger := slog.New(NewMavenHandler(&buf, &MavenOptions{Color: &noColor}))

	logger.Info("hello")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[INFO] ["), line)
	assert.True(t, strings.HasSuffix(line, "] hello\n"), line)
}

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

	logger.Debug("matched", "claim_id", "INV-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "matched", entry["msg"])
	assert.Equal(t, "INV-1", entry["claim_id"])
}

func TestNewLoggerTo_Tint(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggingConfig{Level: "info", Format: "tint"})

	logger.Info("served", "status", 200)

	assert.Contains(t, buf.String(), "served")
	assert.Contains(t, buf.String(), "status=200")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}
