package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForSiteAddsField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	buf.Reset()

	ForSite("example").Info().Int("links", 3).Msg("Page fetched")

	var entry map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "example", entry["site"])
	assert.Equal(t, float64(3), entry["links"])
	assert.Equal(t, "Page fetched", entry["message"])
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf)
	buf.Reset()

	LogError("store", errors.New("disk full"), "persist %s failed", "listings.csv")

	var entry map[string]interface{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "persist listings.csv failed", entry["message"])
}

func TestLogLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", getLogLevel().String())

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ESTATE_ENVIRONMENT", "production")
	assert.Equal(t, "info", getLogLevel().String())

	t.Setenv("ESTATE_ENVIRONMENT", "development")
	assert.Equal(t, "debug", getLogLevel().String())
}
