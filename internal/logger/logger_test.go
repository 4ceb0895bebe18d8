package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/memstore/internal/logger"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.New("json", "debug", &buf)
	require.NoError(t, err)

	log.Debug("hello", slog.Int("shards", 4))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, float64(4), rec["shards"])
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logger.New("text", "warn", &buf)
	require.NoError(t, err)

	log.Info("dropped")
	assert.Empty(t, buf.String())
	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	_, err := logger.New("xml", "info", nil)
	assert.Error(t, err)

	_, err = logger.New("text", "loud", nil)
	assert.Error(t, err)
}
