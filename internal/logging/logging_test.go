package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   logrus.Level
		wantErr bool
	}{
		{"Defaults", Config{}, logrus.InfoLevel, false},
		{"Debug text", Config{Level: "debug", Format: FormatText}, logrus.DebugLevel, false},
		{"Warn json", Config{Level: "warn", Format: FormatJSON}, logrus.WarnLevel, false},
		{"Bad level", Config{Level: "loud"}, 0, true},
		{"Bad format", Config{Format: "xml"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logrus.New()
			err := Apply(logger, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	require.NoError(t, Apply(logger, Config{Format: FormatJSON, Output: &buf}))

	logger.WithField("table", "orders").Info("Uploaded table")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orders", entry["table"])
	assert.Equal(t, "Uploaded table", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}
