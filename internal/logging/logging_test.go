package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Level(t *testing.T) {
	tests := []struct {
		level    string
		expected log.Level
	}{
		{"", log.InfoLevel},
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := log.New()
			closer, err := setup(logger, Config{Level: tt.level})

			require.NoError(t, err)
			assert.NoError(t, closer.Close())
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}
}

func TestSetup_InvalidLevel(t *testing.T) {
	_, err := setup(log.New(), Config{Level: "loud"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hivecli.log")
	logger := log.New()

	closer, err := setup(logger, Config{Level: "info", File: path})
	require.NoError(t, err)

	logger.WithField("component", "test").Info("hello hive")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello hive")
	assert.Contains(t, string(data), "component=test")
}

func TestComponent(t *testing.T) {
	entry := Component("store")

	assert.Equal(t, "store", entry.Data["component"])
}
