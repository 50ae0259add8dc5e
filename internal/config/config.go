package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultBaseURL is the YouTube Data API v3 root.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultDownloadsName = "Downloads"
)

var (
	ErrMissingAPIKey  = errors.New("YouTube API key is required")
	ErrMissingBaseURL = errors.New("YouTube API base URL is required")
)

// Config holds the application configuration
type Config struct {
	YouTubeAPIKey string
	BaseURL       string

	// DownloadDir is where exported workbooks are written.
	DownloadDir string

	// DBPath is an optional SQLite Cloud connection string. Export history
	// is disabled when it is empty.
	DBPath string

	Port     string
	LogLevel string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		BaseURL:       os.Getenv("BASE_URL"),
		DownloadDir:   os.Getenv("DOWNLOAD_DIR"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if cfg.DownloadDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DownloadDir = filepath.Join(home, defaultDownloadsName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("%w: YOUTUBE_API_KEY environment variable is not set", ErrMissingAPIKey)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: BASE_URL environment variable is not set", ErrMissingBaseURL)
	}
	return nil
}

// HistoryEnabled reports whether export runs should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.DBPath != ""
}
