// Package cache provides generic TTL caches backed by memory or Redis, and a
// read-through Loader that deduplicates concurrent misses with singleflight.
//
// The binding layer uses it to cache default-lookup rows:
//
//	rows := cache.NewRedis[map[string]any](client, nil, cache.WithPrefix("rows"))
//	users := db.NewTable(pool, "users",
//	    db.WithRouteKey("username"),
//	    db.WithCache(rows, time.Minute),
//	)
//
// Memory caches evict the least recently used entry when WithMaxEntries is set
// and drop expired entries on a background janitor; call Close to stop it.
package cache
