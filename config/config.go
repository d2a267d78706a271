package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Run modes
const (
	ModeCrawl   = "crawl"
	ModeCleanup = "cleanup"
)

// Config represents the application configuration
type Config struct {
	// Sites
	SitesFile  string
	Sites      []string
	TargetArea string

	// Dataset
	DatasetPath string

	// Crawler configuration
	MaxPages        int
	RequestDelay    time.Duration
	RequestTimeout  time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	SkipFailedPages bool
	BlockTime       time.Duration

	// Memcache configuration, empty address disables the block flag cache
	MemcacheAddr string

	// Redis configuration, empty address disables publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int64

	// Postgres mirror, empty DSN disables it
	PostgresDSN string

	RunMode     string
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		SitesFile:            getEnv("SITES_FILE", "config/sites.yaml"),
		Sites:                getEnvList("SITES"),
		TargetArea:           getEnv("TARGET_AREA", "Beirut"),
		DatasetPath:          getEnv("DATASET_PATH", "output/listings.csv"),
		MaxPages:             getEnvInt("MAX_PAGES", 40),
		RequestDelay:         time.Duration(getEnvInt("REQUEST_DELAY_MS", 2000)) * time.Millisecond,
		RequestTimeout:       time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries:           getEnvInt("MAX_RETRIES", 3),
		RetryBaseDelay:       time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond,
		SkipFailedPages:      getEnvBool("SKIP_FAILED_PAGES", false),
		BlockTime:            time.Duration(getEnvInt("BLOCK_TIME_SECONDS", 500)) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: int64(getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000)),
		PostgresDSN:          getEnv("POSTGRES_DSN", ""),
		RunMode:              strings.ToLower(getEnv("RUN_MODE", ModeCrawl)),
		Environment:          getEnv("ESTATE_ENVIRONMENT", "development"),
	}
}

// Validate checks that numeric settings are in range and the run mode is known
func (c *Config) Validate() error {
	switch {
	case c.MaxPages < 1:
		return fmt.Errorf("MAX_PAGES must be positive, got %d", c.MaxPages)
	case c.RequestDelay < 0:
		return fmt.Errorf("REQUEST_DELAY_MS must not be negative, got %v", c.RequestDelay)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %v", c.RequestTimeout)
	case c.MaxRetries < 1:
		return fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	case c.RetryBaseDelay < 0:
		return fmt.Errorf("RETRY_BASE_DELAY_MS must not be negative, got %v", c.RetryBaseDelay)
	case c.RedisStreamCount < 1:
		return fmt.Errorf("REDIS_STREAM_COUNT must be at least 1, got %d", c.RedisStreamCount)
	case c.DatasetPath == "":
		return fmt.Errorf("DATASET_PATH must not be empty")
	}

	if c.RunMode != ModeCrawl && c.RunMode != ModeCleanup {
		return fmt.Errorf("unknown RUN_MODE %q", c.RunMode)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt parses an integer variable, falling back to the default when
// it is unset or malformed
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
