package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, "v1", c.Endpoint.Namespace)
	assert.Equal(t, "http://localhost:8181", c.Endpoint.Host)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, "info", c.Log.Level)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing host", func(c *Config) { c.Endpoint.Host = "" }, "endpoint.host is required"},
		{"relative host", func(c *Config) { c.Endpoint.Host = "localhost:8181" }, "absolute URL"},
		{"bad scheme", func(c *Config) { c.Endpoint.Host = "ftp://localhost" }, "http or https"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"https ok", func(c *Config) { c.Endpoint.Host = "https://bees.example.com" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
endpoint:
  host: http://bees.local:9000
timeout: 5s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://bees.local:9000", c.Endpoint.Host)
	assert.Equal(t, "v1", c.Endpoint.Namespace, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: [not, a, map]"), 0o644))

	_, err := LoadFromFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad(t *testing.T) {
	t.Run("missing default file falls back to defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultEndpoint(), c.Endpoint)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("endpoint:\n  host: nope\n"), 0o644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c := DefaultConfig()
	c.Endpoint.Host = "http://bees.local:9000"
	c.Timeout = 10 * time.Second

	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestMerge(t *testing.T) {
	c := DefaultConfig()
	c.Merge(&Config{
		Endpoint: models.Endpoint{Host: "http://other:1234"},
		Log:      c.Log,
	})

	assert.Equal(t, "http://other:1234", c.Endpoint.Host)
	assert.Equal(t, "v1", c.Endpoint.Namespace)
	assert.Equal(t, 30*time.Second, c.Timeout)

	c.Merge(nil)
	assert.Equal(t, "http://other:1234", c.Endpoint.Host)
}
