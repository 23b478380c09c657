package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dwell.log")

	log, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.With(String("user_id", "u1")).Debug("page upserted", Int64("duration", 42))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"page upserted"`)
	assert.Contains(t, string(data), `"user_id":"u1"`)
	assert.Contains(t, string(data), `"duration":42`)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dwell.log")

	log, err := New(Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestWrap_Observer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := Wrap(zap.New(core))

	log.Error("ingest failed", Error(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ingest failed", entry.Message)
	assert.Equal(t, "boom", entry.ContextMap()["error"])
}

func TestNop(t *testing.T) {
	log := NewNop()
	log.With(String("k", "v")).Info("nothing")
	assert.NoError(t, log.Sync())
}
