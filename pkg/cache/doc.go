// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry expiry.
//
// The user directory keeps recently resolved users here so that the push
// path does not hit the database for every notification:
//
//	users := cache.NewLRUCache[uuid.UUID, notifications.User](1024,
//		cache.WithTTL(5*time.Minute),
//	)
//	users.Put(u.ID, u)
//	if u, ok := users.Get(id); ok {
//		// fresh hit
//	}
//
// Expired entries are removed lazily on Get, or in bulk with Purge. An
// eviction callback set with SetEvictCallback runs for capacity evictions,
// explicit removals, expiry and Clear alike.
//
// Get, Put and Remove are O(1).
package cache
