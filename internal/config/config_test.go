package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://dpupd.sco.ca.gov", cfg.Source.BaseURL)
	assert.Len(t, cfg.Source.Archives, 5)
	assert.Equal(t, 10000, cfg.Storage.ChunkSize)
	assert.Equal(t, filepath.Join("data", "unclaimed.db"), cfg.Storage.DBPath)
	assert.Equal(t, 8000, cfg.Server.Port)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "propseek.yaml")
	content := `
version: 1
source:
  base_url: http://localhost:9999
  archives:
    - test.zip
  fetch_timeout: 5s
storage:
  data_dir: /tmp/propseek
  chunk_size: 500
server:
  port: 8080
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Source.BaseURL)
	assert.Equal(t, []string{"test.zip"}, cfg.Source.Archives)
	assert.Equal(t, 5*time.Second, cfg.Source.FetchTimeoutDuration())
	assert.Equal(t, 500, cfg.Storage.ChunkSize)
	assert.Equal(t, filepath.Join("/tmp/propseek", "unclaimed.db"), cfg.Storage.DBPath)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PROPSEEK_BASE_URL", "http://envhost")
	t.Setenv("PROPSEEK_CHUNK_SIZE", "250")
	t.Setenv("PROPSEEK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://envhost", cfg.Source.BaseURL)
	assert.Equal(t, 250, cfg.Storage.ChunkSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "propseek.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Source.BaseURL = "" }},
		{"no archives", func(c *Config) { c.Source.Archives = nil }},
		{"unparsable fetch timeout", func(c *Config) { c.Source.FetchTimeout = "soon" }},
		{"zero chunk size", func(c *Config) { c.Storage.ChunkSize = 0 }},
		{"negative max results", func(c *Config) { c.Search.MaxResults = -1 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
