package constants

import (
	"time"
)

// Redis cache keys and TTLs for the studio backend.
// Pattern: boxstudio:{module}:{operation}:{params?}

const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute
	TTL_DYNAMIC_SHORT  = 5 * time.Minute
	TTL_DYNAMIC_QUICK  = 2 * time.Minute
)

const (
	CACHE_PREFIX = "boxstudio"
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_FACTS   = CACHE_PREFIX + ":analytics:facts"
	CACHE_KEY_ANALYTICS_KPIS    = CACHE_PREFIX + ":analytics:kpis"
	CACHE_KEY_ANALYTICS_SUMMARY = CACHE_PREFIX + ":analytics:summary"
	CACHE_KEY_ANALYTICS_TOTALS  = CACHE_PREFIX + ":analytics:totals"
	CACHE_KEY_ANALYTICS_WINDOW  = CACHE_PREFIX + ":analytics:window" // + :start:X:end:Y
)

// Analytics are recomputed from a live store, so entries stay short-lived
const (
	TTL_ANALYTICS_FACTS   = TTL_DYNAMIC_QUICK
	TTL_ANALYTICS_KPIS    = TTL_DYNAMIC_QUICK
	TTL_ANALYTICS_SUMMARY = TTL_DYNAMIC_SHORT
	TTL_ANALYTICS_TOTALS  = TTL_DYNAMIC_QUICK
	TTL_ANALYTICS_WINDOW  = TTL_DYNAMIC_MEDIUM
)

// ================== RATE LIMIT ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + token:ip
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_ANALYTICS = CACHE_PREFIX + ":analytics:*"
)

// BuildAnalyticsWindowKey keys a windowed computation by its UTC bounds
func BuildAnalyticsWindowKey(start, end time.Time) string {
	return CACHE_KEY_ANALYTICS_WINDOW + ":start:" + formatBound(start) + ":end:" + formatBound(end)
}

func BuildRateLimitKey(identity string) string {
	return CACHE_KEY_RATE_LIMIT + identity
}

// formatBound keeps nanoseconds: bounds that differ below a second are different windows
func formatBound(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
