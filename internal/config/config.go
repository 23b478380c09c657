package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/dwell/internal/logger"
)

// Default config file path.
const DefaultConfigPath = "~/.config/dwell/config.yaml"

// Config holds all dwell configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Logging   logger.Config   `yaml:"logging"`
	Retention RetentionConfig `yaml:"retention"`
	Stats     StatsConfig     `yaml:"stats"`
}

type StorageConfig struct {
	Path          string `yaml:"path"`
	SQLiteFile    string `yaml:"sqlite_file"`
	JournalMode   string `yaml:"sqlite_journal_mode"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

type ServerConfig struct {
	Host                  string   `yaml:"host"`
	Port                  int      `yaml:"port"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	MaxRequestSize        int64    `yaml:"max_request_size"`
}

type RetentionConfig struct {
	Days int `yaml:"days"`
}

type StatsConfig struct {
	RecentLimit int `yaml:"recent_limit"`
}

// RequestTimeout returns the per-request deadline as a duration.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// DBPath returns the absolute path of the SQLite file.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// Validate rejects values the daemon cannot start with.
func (c *Config) Validate() error {
	if c.Storage.SQLiteFile == "" {
		return fmt.Errorf("storage.sqlite_file must not be empty")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Retention.Days < 1 {
		return fmt.Errorf("retention.days must be at least 1, got %d", c.Retention.Days)
	}
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from path, or from DefaultConfigPath when
// path is empty. A missing file is created with defaults.
func LoadOrCreate(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(expanded)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
