package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ginjaninja78/processautomate/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "json"

	buf := &bytes.Buffer{}
	logger := NewWithWriter(cfg, buf)
	logger.WithField("file", "a.xlsx").Info("processed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "processed", entry["msg"])
	assert.Equal(t, "a.xlsx", entry["file"])
}

func TestNewWithWriterLevelFilters(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "warn"

	buf := &bytes.Buffer{}
	logger := NewWithWriter(cfg, buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
