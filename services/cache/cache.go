package cache

import (
	"errors"
	"strings"
	"time"
)

// ErrMiss is returned by Get when the key is not present
var ErrMiss = errors.New("cache miss")

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// BlockKey returns the cache key used to flag a host as rate limited.
// Memcache keys must not contain spaces or control characters.
func BlockKey(host string) string {
	key := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return '_'
		}
		return r
	}, host)
	return "estate_rate_limited:" + key
}
