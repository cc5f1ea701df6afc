package sqlitedriver

import (
	"fmt"
	"sync"
)

// connCacheEntry is one cached, refcounted *Driver. The cache is
// process-wide, keyed by (driver name, connect string), and refcounted:
// the last release returns the entry to the idle list, and if that puts
// the idle list over cap the oldest idle entry is closed.
type connCacheEntry struct {
	driver   *Driver
	refcount int
}

// cache is the process-wide connection cache. idleCap bounds how many
// zero-refcount entries may sit in the cache; a release that exceeds it
// closes and evicts the oldest idle entry.
type cache struct {
	mu      sync.Mutex
	entries map[string]*connCacheEntry
	idle    []string // keys with refcount 0, most-recently-idled last
	idleCap int
}

var defaultCache = newCache(10)

func newCache(idleCap int) *cache {
	return &cache{
		entries: make(map[string]*connCacheEntry),
		idleCap: idleCap,
	}
}

func cacheKey(driverName, connString string) string {
	return driverName + "\x00" + connString
}

// Acquire returns a shared *Driver for (driverName, connString), opening
// one via openFn if the cache has no entry yet. Each Acquire call must be
// paired with exactly one Release.
func Acquire(driverName, connString string, openFn func() (*Driver, error)) (*Driver, error) {
	return defaultCache.acquire(driverName, connString, openFn)
}

// Release drops one reference to the connection identified by
// (driverName, connString). When the refcount reaches zero the entry is
// parked in the idle list; if that pushes the idle count over the cap,
// the oldest idle entry is closed and evicted.
func Release(driverName, connString string) error {
	return defaultCache.release(driverName, connString)
}

func (c *cache) acquire(driverName, connString string, openFn func() (*Driver, error)) (*Driver, error) {
	key := cacheKey(driverName, connString)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if e.refcount == 0 {
			c.removeIdle(key)
		}
		e.refcount++
		return e.driver, nil
	}

	d, err := openFn()
	if err != nil {
		return nil, err
	}
	c.entries[key] = &connCacheEntry{driver: d, refcount: 1}
	return d, nil
}

func (c *cache) release(driverName, connString string) error {
	key := cacheKey(driverName, connString)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return fmt.Errorf("sqlitedriver: release of unknown connection %q", key)
	}
	e.refcount--
	if e.refcount > 0 {
		return nil
	}

	c.idle = append(c.idle, key)
	if len(c.idle) <= c.idleCap {
		return nil
	}

	evictKey := c.idle[0]
	c.idle = c.idle[1:]
	evicted := c.entries[evictKey]
	delete(c.entries, evictKey)
	return evicted.driver.Close()
}

func (c *cache) removeIdle(key string) {
	for i, k := range c.idle {
		if k == key {
			c.idle = append(c.idle[:i], c.idle[i+1:]...)
			return
		}
	}
}
