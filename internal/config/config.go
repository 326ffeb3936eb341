// Package config loads and validates PropSeek configuration.
//
// Configuration is resolved in priority order:
//  1. Built-in defaults
//  2. YAML config file (propseek.yaml)
//  3. Environment variables (PROPSEEK_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default archive locations published by the State Controller's Office.
// The full dump overlaps the four tiered sub-dumps; ingestion dedup by
// property id makes loading any combination of them safe.
var DefaultArchives = []string{
	"00_All_Records.zip",
	"01_From_0_To_Below_10.zip",
	"02_From_10_To_Below_100.zip",
	"03_From_100_To_Below_500.zip",
	"04_From_500_To_Beyond.zip",
}

// Config represents the complete PropSeek configuration.
type Config struct {
	Version int           `yaml:"version"`
	Source  SourceConfig  `yaml:"source"`
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// SourceConfig configures where archives are fetched from.
type SourceConfig struct {
	// BaseURL is the upstream file server publishing the record dumps.
	BaseURL string `yaml:"base_url"`

	// Archives is the list of archive locations one full ingestion covers.
	Archives []string `yaml:"archives"`

	// FetchTimeout bounds a single archive download. Duration string,
	// e.g. "60s" or "2m".
	FetchTimeout string `yaml:"fetch_timeout"`

	// FetchesPerMinute throttles archive downloads against the upstream
	// server. Zero disables throttling.
	FetchesPerMinute int `yaml:"fetches_per_minute"`
}

// StorageConfig configures the record store.
type StorageConfig struct {
	// DataDir is the working directory for the database and run lock.
	DataDir string `yaml:"data_dir"`

	// DBPath is the SQLite database path. Empty derives from DataDir.
	DBPath string `yaml:"db_path"`

	// ChunkSize is the number of records committed per batch. It is a
	// throughput tunable, not a correctness parameter.
	ChunkSize int `yaml:"chunk_size"`

	// CacheMB is the SQLite page cache size in MB.
	CacheMB int `yaml:"cache_mb"`
}

// SearchConfig configures the read path.
type SearchConfig struct {
	// MaxResults caps the limit a caller may request.
	MaxResults int `yaml:"max_results"`

	// CacheSize is the number of properties kept in the lookup LRU cache.
	CacheSize int `yaml:"cache_size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Source: SourceConfig{
			BaseURL:          "https://dpupd.sco.ca.gov",
			Archives:         append([]string(nil), DefaultArchives...),
			FetchTimeout:     "60s",
			FetchesPerMinute: 0,
		},
		Storage: StorageConfig{
			DataDir:   "data",
			ChunkSize: 10000,
			CacheMB:   64,
		},
		Search: SearchConfig{
			MaxResults: 100,
			CacheSize:  1024,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = filepath.Join(cfg.Storage.DataDir, "unclaimed.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FetchTimeoutDuration parses the fetch timeout, falling back to the
// default when unset or unparsable.
func (c *SourceConfig) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// applyEnv overlays PROPSEEK_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PROPSEEK_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("PROPSEEK_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("PROPSEEK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("PROPSEEK_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.ChunkSize = n
		}
	}
	if v := os.Getenv("PROPSEEK_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("PROPSEEK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url must not be empty")
	}
	if len(c.Source.Archives) == 0 {
		return fmt.Errorf("source.archives must list at least one archive")
	}
	if d, err := time.ParseDuration(c.Source.FetchTimeout); err != nil || d <= 0 {
		return fmt.Errorf("source.fetch_timeout must be a positive duration, got %q", c.Source.FetchTimeout)
	}
	if c.Storage.ChunkSize <= 0 {
		return fmt.Errorf("storage.chunk_size must be positive")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	return nil
}
