package constants

import "time"

type (
	CachePrefix string
	SessionType string
)

const (
	CachePrefixCurrentSession CachePrefix = "SESSION_CURRENT_"
	CachePrefixDrivers        CachePrefix = "DRIVERS_"
)

// Session types as reported by the upstream API. Anything else is "Other".
const (
	SessionTypeRace       SessionType = "Race"
	SessionTypeQualifying SessionType = "Qualifying"
	SessionTypePractice   SessionType = "Practice"
)

// In-memory cache defaults; per-entry TTLs come from configuration.
const (
	DefaultCacheExpiration = 5 * time.Minute
	DefaultCacheCleanup    = 10 * time.Minute
)
