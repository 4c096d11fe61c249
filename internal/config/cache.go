package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the Redis-backed caches: the response
// cache middleware in front of GET /schedule and the data cache for
// schedule exceptions and holiday calendars. When Enabled is false or no
// Redis client is configured, caching is disabled. TTL stays in the tens of
// seconds since exceptions are edited by hand in the record store.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
	// StaleWhileRevalidate is advertised to browsers and CDNs on cacheable
	// responses.
	StaleWhileRevalidate time.Duration
}

// LoadCacheConfig reads environment variables to build a CacheConfig. All
// methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:              envBool("CACHE_ENABLED", true),
		Methods:              parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:                  envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:          envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:               envStr("CACHE_PREFIX", "fitsite"),
		MaxBodyBytes:         envInt("CACHE_MAX_BODY_BYTES", 1048576),
		StaleWhileRevalidate: envDur("CACHE_STALE_WHILE_REVALIDATE", 60*time.Second),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
