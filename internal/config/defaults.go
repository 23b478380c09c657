package config

import "github.com/runnerr0/dwell/internal/logger"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:          "~/.local/share/dwell",
			SQLiteFile:    "dwell.db",
			JournalMode:   "wal",
			BusyTimeoutMS: 5000,
		},
		Server: ServerConfig{
			Host:                  "127.0.0.1",
			Port:                  8721,
			AllowedOrigins:        []string{"*"},
			RequestTimeoutSeconds: 30,
			MaxRequestSize:        1048576,
		},
		Logging: logger.Config{
			Level:       "info",
			Development: false,
			OutputPaths: []string{"stderr"},
		},
		Retention: RetentionConfig{
			Days: 14,
		},
		Stats: StatsConfig{
			RecentLimit: 20,
		},
	}
}
