package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"mobtakir/api/internal/config"
)

func TestNewLevels(t *testing.T) {
	logger, err := New(&config.Config{LogLevel: "warn", LogFormat: "json", LogFile: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&config.Config{LogLevel: "loud"})
	require.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.log")
	logger, err := New(&config.Config{LogLevel: "info", LogFormat: "console", LogFile: path})
	require.NoError(t, err)

	logger.Info("hello")
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")
}
