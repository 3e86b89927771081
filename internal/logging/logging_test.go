package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNewWritesJSONToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "aliados.log")
	logger, cleanup, err := New("aliados", "warn", path)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("partner deleted", "partner_id", 7)
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "partner deleted", entry["msg"])
	assert.Equal(t, float64(7), entry["partner_id"])
	assert.Equal(t, "aliados", entry["app"])
}

func TestNewBadFile(t *testing.T) {
	_, _, err := New("aliados", "info", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
