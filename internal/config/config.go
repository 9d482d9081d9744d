package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fragmede/commentbox/internal/pager"
)

type Config struct {
	ConfigDir string
	LogPath   string

	// Client
	APIBaseURL      string
	RequestTimeout  time.Duration
	DefaultPageSize int
	PageSizes       []int
	WindowSize      int
	PrefetchPages   int
	PrefetchTTL     time.Duration

	// Service
	ServerAddr string
	DBPath     string
	CORSOrigin string
}

func Default() Config {
	configDir := filepath.Join(userConfigDir(), "commentbox")
	return Config{
		ConfigDir:       configDir,
		LogPath:         filepath.Join(configDir, "debug.log"),
		APIBaseURL:      "http://localhost:8080/api",
		RequestTimeout:  10 * time.Second,
		DefaultPageSize: 5,
		PageSizes:       []int{5, 10, 20, pager.Unbounded},
		WindowSize:      pager.DefaultWindow,
		PrefetchPages:   1,
		PrefetchTTL:     30 * time.Second,
		ServerAddr:      ":8080",
		DBPath:          filepath.Join(configDir, "comments.db"),
		CORSOrigin:      "*",
	}
}

// Load returns Default with environment overrides applied.
func Load() (Config, error) {
	cfg := Default()

	cfg.APIBaseURL = getEnv("COMMENTBOX_API_URL", cfg.APIBaseURL)
	cfg.LogPath = getEnv("COMMENTBOX_LOG_PATH", cfg.LogPath)
	cfg.DefaultPageSize = getEnvInt("COMMENTBOX_PAGE_SIZE", cfg.DefaultPageSize)
	cfg.WindowSize = getEnvInt("COMMENTBOX_WINDOW", cfg.WindowSize)
	cfg.PrefetchPages = getEnvInt("COMMENTBOX_PREFETCH_PAGES", cfg.PrefetchPages)
	cfg.PrefetchTTL = getEnvDuration("COMMENTBOX_PREFETCH_TTL", cfg.PrefetchTTL)
	if secs := getEnvInt("COMMENTBOX_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}

	cfg.ServerAddr = getEnv("COMMENTD_ADDR", cfg.ServerAddr)
	cfg.DBPath = getEnv("COMMENTD_DB_PATH", cfg.DBPath)
	cfg.CORSOrigin = getEnv("COMMENTD_CORS_ORIGIN", cfg.CORSOrigin)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("COMMENTBOX_API_URL must not be empty")
	}
	if !pager.ValidSize(c.DefaultPageSize) {
		return fmt.Errorf("COMMENTBOX_PAGE_SIZE must be positive or %d, got %d", pager.Unbounded, c.DefaultPageSize)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("COMMENTBOX_WINDOW must be positive, got %d", c.WindowSize)
	}
	if c.PrefetchPages < 0 {
		return fmt.Errorf("COMMENTBOX_PREFETCH_PAGES must not be negative, got %d", c.PrefetchPages)
	}
	return nil
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
