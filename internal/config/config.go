// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds everything the binary needs to wire itself up.
type Config struct {
	DBPath       string
	Store        string
	RedisURL     string
	LogLevel     string
	HistoryLimit int
	UndoLimit    int
	TickInterval time.Duration

	// EnvFile is the .env file that was loaded, empty if none.
	EnvFile string
}

// Load reads the environment. Files named in envFiles are loaded first
// (".env" when none are given); a missing file is not an error. Variables
// already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	loaded := ""
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			loaded = f
		}
	}

	cfg := &Config{
		DBPath:   getEnv("SNOOKER_DB_PATH", "snooker.db"),
		Store:    getEnv("SNOOKER_STORE", StoreSQLite),
		RedisURL: getEnv("SNOOKER_REDIS_URL", "redis://localhost:6379/0"),
		LogLevel: getEnv("SNOOKER_LOG_LEVEL", "warn"),
		EnvFile:  loaded,
	}

	var err error
	if cfg.HistoryLimit, err = getEnvInt("SNOOKER_HISTORY_LIMIT", 50); err != nil {
		return nil, err
	}
	if cfg.UndoLimit, err = getEnvInt("SNOOKER_UNDO_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.TickInterval, err = getEnvDuration("SNOOKER_TICK_INTERVAL", 100*time.Millisecond); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("SNOOKER_STORE must be %q or %q, got %q", StoreSQLite, StoreRedis, c.Store)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("SNOOKER_HISTORY_LIMIT must be at least 1, got %d", c.HistoryLimit)
	}
	if c.UndoLimit < 1 {
		return fmt.Errorf("SNOOKER_UNDO_LIMIT must be at least 1, got %d", c.UndoLimit)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("SNOOKER_TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
