package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scribblehub-to-epub/pkg/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", used)
	assert.Equal(t, BackendSQLite, cfg.CacheBackend)
	assert.Equal(t, 60, cfg.RequestsPerMinute)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL)
	assert.True(t, cfg.Images)
	assert.True(t, cfg.StraightenQuotes)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_backend: none\ncache_ttl: 1h\nrequests_per_minute: 10\nimages: false\n"), 0644))

	t.Setenv("SH2EPUB_REQUESTS_PER_MINUTE", "30")

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, BackendNone, cfg.CacheBackend)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
	assert.False(t, cfg.Images)
	// untouched keys keep their defaults
	assert.Equal(t, "node", cfg.UserAgent)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_ttl: [\n"), 0644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"unknown backend", func(c *Config) { c.CacheBackend = "disk" }, false},
		{"zero rpm", func(c *Config) { c.RequestsPerMinute = 0 }, false},
		{"negative retries", func(c *Config) { c.RetryCount = -1 }, false},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, false},
		{"bad base url", func(c *Config) { c.BaseURL = "scribblehub" }, false},
		{"redis", func(c *Config) { c.CacheBackend = BackendRedis }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
			}
		})
	}
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.CacheBackend = BackendMemcache
	cfg.RetryWait = 5 * time.Second

	require.NoError(t, SaveYAML(cfg, path))

	loaded, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, BackendMemcache, loaded.CacheBackend)
	assert.Equal(t, 5*time.Second, loaded.RetryWait)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.CacheBackend = BackendRedis
	cfg.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, " -cache_backend: redis")
	assert.Contains(t, out, " -redis_addr: localhost:6379")
	assert.NotContains(t, out, "memcache_addr")
	assert.NotContains(t, out, "stylesheet")

	buf.Reset()
	cfg.Stylesheet = "/tmp/book.css"
	cfg.Print(&buf)
	assert.Contains(t, buf.String(), " -stylesheet: /tmp/book.css")
}
