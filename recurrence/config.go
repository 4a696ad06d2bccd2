package recurrence

import "time"

// Config holds tuning options for a Resolver.
type Config struct {
	// Cache configuration
	CacheEnabled bool
	Cache        CacheConfig

	// MaxScanOccurrences bounds how many candidates a next-occurrence scan
	// inspects before giving up.
	MaxScanOccurrences int

	// ScanHorizon bounds how far past the anchor a next-occurrence scan
	// looks. It must comfortably exceed one yearly interval, since yearly
	// rules are sparse relative to the day/week windows calendars ask for.
	ScanHorizon time.Duration
}

// DefaultConfig provides sensible defaults for production use.
var DefaultConfig = Config{
	CacheEnabled: true,
	Cache:        DefaultCacheConfig,

	MaxScanOccurrences: 1000,
	ScanHorizon:        800 * 24 * time.Hour,
}

// UncachedConfig turns off expansion caching entirely; every window query
// re-expands from scratch.
var UncachedConfig = Config{
	CacheEnabled: false,

	MaxScanOccurrences: 1000,
	ScanHorizon:        800 * 24 * time.Hour,
}

// LowMemoryConfig keeps a small, short-lived cache for memory-constrained
// hosts.
var LowMemoryConfig = Config{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: 2 * time.Minute,
	},

	MaxScanOccurrences: 1000,
	ScanHorizon:        800 * 24 * time.Hour,
}
