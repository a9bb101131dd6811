package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactbook/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json format emits structured records", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"})
		log.Info("contact created", "contact_id", "abc")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "contact created", record["msg"])
		assert.Equal(t, "abc", record["contact_id"])
	})

	t.Run("level filters lower records", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "text"})
		log.Info("dropped")
		assert.Empty(t, buf.String())
		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
	})
}
