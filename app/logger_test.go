package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RAMarenco/nlp-analyzer/config"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"}, &buf)
	logger.Info("Loaded.", "model", "es_core_news_sm")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Loaded.", entry["msg"])
	assert.Equal(t, "es_core_news_sm", entry["model"])
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"WARN", false, true},
		{"bogus", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(config.LogConfig{Level: tt.level, Format: "text"}, &buf)

			logger.Debug("debug line")
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))

			logger.Warn("warn line")
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("warn line")))
		})
	}
}
