package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Fetch    FetchConfig    `yaml:"fetch"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type FetchConfig struct {
	Mode         string        `yaml:"mode"`          // "file" or "http"
	CacheFile    string        `yaml:"cache_file"`    // Path to the raw cycle document
	URL          string        `yaml:"url"`           // Upstream URL (http mode)
	Timeout      time.Duration `yaml:"timeout"`       // Per-request timeout (http mode)
	Retries      int           `yaml:"retries"`       // Max retry attempts (http mode)
	RetryBackoff time.Duration `yaml:"retry_backoff"` // Base backoff between retries, doubled per attempt
	WriteThrough bool          `yaml:"write_through"` // Persist fetched document to cache_file (http mode)
}

type StorageConfig struct {
	Backend  string         `yaml:"backend"` // "file" or "postgres"
	SeenDir  string         `yaml:"seen_dir"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type AlertsConfig struct {
	// Params maps a registered alert name to its parameters. An alert with no
	// entry here runs with its registered defaults.
	Params map[string]AlertParams `yaml:"params"`
}

type AlertParams struct {
	Threshold float64 `yaml:"threshold"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`     // debug, info, warn, error
	Dir      string `yaml:"dir"`       // Directory for per-alert and summary log files
	FileName string `yaml:"file_name"` // Optional extra log file for the orchestrator itself
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Fetch.Mode == "" {
		c.Fetch.Mode = "file"
	}
	if c.Fetch.CacheFile == "" {
		c.Fetch.CacheFile = "full_match_cache.json"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 15 * time.Second
	}
	if c.Fetch.Retries <= 0 {
		c.Fetch.Retries = 3
	}
	if c.Fetch.RetryBackoff <= 0 {
		c.Fetch.RetryBackoff = 2 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.SeenDir == "" {
		c.Storage.SeenDir = "seen"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
}
