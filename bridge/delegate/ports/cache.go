// Package ports defines the interfaces the delegation gate composes over.
// Adapters live in bridge/delegate/adapters; the gate and runner depend only
// on these contracts.
package ports

// CacheStats is a point-in-time snapshot of cache occupancy. Expired counts
// entries past their TTL that no Get or purge has removed yet; they still
// occupy slots but can never be served.
type CacheStats struct {
	Entries    int   `json:"entries"`
	Expired    int   `json:"expired"`
	MaxEntries int   `json:"max_entries"`
	TTLSeconds int64 `json:"ttl_seconds"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
}

// ResultCache stores delegation outcomes keyed by content-addressed request
// keys. Implementations must be safe for concurrent use.
type ResultCache interface {
	// Get returns the cached value for key, or ok=false on a miss. An entry
	// past its TTL is removed and reported as a miss.
	Get(key string) (value string, ok bool)

	// Put stores value under key, recording the working directory the key
	// was derived from so directory-level invalidation can find it.
	Put(key, dir, value string)

	// PurgeExpired removes every expired entry and reports how many.
	PurgeExpired() int

	// Clear empties the cache and reports how many entries were dropped.
	Clear() int

	// InvalidateDir drops every entry recorded against dir.
	InvalidateDir(dir string) int

	// Stats reports occupancy without mutating the cache.
	Stats() CacheStats
}
