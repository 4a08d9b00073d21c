package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 30*time.Second, cfg.Analysis.Timeout)
	require.Equal(t, 10, cfg.Trends.DefaultLimit)
	require.False(t, cfg.Storage.Enabled)
	require.Empty(t, cfg.Catalog.Path)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9000"
  allowedOrigins: ["https://shop.example.com"]
analysis:
  backendUrl: "http://ml:5000"
  timeout: 5s
trends:
  defaultLimit: 3
  redis:
    enabled: true
    addr: "valkey:6379"
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ML_BACKEND_TIMEOUT", "12s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, "http://ml:5000", cfg.Analysis.BackendURL)
	require.Equal(t, 12*time.Second, cfg.Analysis.Timeout)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 3, cfg.Trends.DefaultLimit)
	require.True(t, cfg.Trends.Redis.Enabled)
	// untouched defaults survive partial files
	require.Equal(t, uint32(5), cfg.Analysis.Breaker.FailureThreshold)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty address", func(c *Config) { c.HTTP.Address = "" }},
		{"empty backend", func(c *Config) { c.Analysis.BackendURL = " " }},
		{"zero timeout", func(c *Config) { c.Analysis.Timeout = 0 }},
		{"redis without addr", func(c *Config) { c.Trends.Redis.Enabled = true }},
		{"storage without endpoint", func(c *Config) { c.Storage.Enabled = true }},
		{"rate limit without rpm", func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 }},
		{"retry without attempts", func(c *Config) { c.HTTP.Retry.MaxAttempts = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, defaultConfig().Validate())
}
