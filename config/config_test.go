package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "config/sites.yaml", config.SitesFile)
	assert.Empty(t, config.Sites)
	assert.Equal(t, "Beirut", config.TargetArea)
	assert.Equal(t, "output/listings.csv", config.DatasetPath)
	assert.Equal(t, 40, config.MaxPages)
	assert.Equal(t, 2*time.Second, config.RequestDelay)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, time.Second, config.RetryBaseDelay)
	assert.False(t, config.SkipFailedPages)
	assert.Equal(t, 500*time.Second, config.BlockTime)
	assert.Empty(t, config.MemcacheAddr)
	assert.Empty(t, config.RedisAddr)
	assert.Equal(t, "listings", config.RedisStream)
	assert.Equal(t, 1, config.RedisStreamCount)
	assert.Equal(t, int64(1000), config.RedisStreamMaxLength)
	assert.Equal(t, ModeCrawl, config.RunMode)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("SITES", "alpha, beta,,")
	t.Setenv("MAX_PAGES", "5")
	t.Setenv("REQUEST_DELAY_MS", "250")
	t.Setenv("SKIP_FAILED_PAGES", "true")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "1")
	t.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	t.Setenv("RUN_MODE", "Cleanup")

	config = LoadConfig()
	assert.Equal(t, []string{"alpha", "beta"}, config.Sites)
	assert.Equal(t, 5, config.MaxPages)
	assert.Equal(t, 250*time.Millisecond, config.RequestDelay)
	assert.True(t, config.SkipFailedPages)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, ModeCleanup, config.RunMode)
}

func TestLoadConfigMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_PAGES", "many")
	t.Setenv("SKIP_FAILED_PAGES", "maybe")

	config := LoadConfig()
	assert.Equal(t, 40, config.MaxPages)
	assert.False(t, config.SkipFailedPages)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"max pages", func(c *Config) { c.MaxPages = 0 }},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }},
		{"timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"retries", func(c *Config) { c.MaxRetries = 0 }},
		{"stream count", func(c *Config) { c.RedisStreamCount = 0 }},
		{"dataset path", func(c *Config) { c.DatasetPath = "" }},
		{"run mode", func(c *Config) { c.RunMode = "serve" }},
	}

	for _, tc := range testCases {
		config := LoadConfig()
		tc.mutate(config)
		assert.Error(t, config.Validate(), tc.name)
	}
}
