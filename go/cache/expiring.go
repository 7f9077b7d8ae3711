/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// ExpiringCache is a Cache backed by github.com/patrickmn/go-cache. Entries
// expire after Config.DefaultExpiration and the cache refuses new entries once
// MaxEntries live entries are stored.
type ExpiringCache[V any] struct {
	cache      *gocache.Cache
	maxEntries int

	// setMu makes the capacity check and the insert of Set one step.
	setMu sync.Mutex
}

var _ Cache[int] = (*ExpiringCache[int])(nil)

// NewExpiringCache creates an ExpiringCache from cfg.
func NewExpiringCache[V any](cfg *Config) *ExpiringCache[V] {
	expiration := cfg.DefaultExpiration
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	return &ExpiringCache[V]{
		cache:      gocache.New(expiration, cfg.CleanupInterval),
		maxEntries: cfg.MaxEntries,
	}
}

// Get returns the value stored under key, if it is present and has not expired.
func (c *ExpiringCache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := c.cache.Get(key)
	if !ok {
		return zero, false
	}
	val, ok := v.(V)
	if !ok {
		return zero, false
	}
	return val, true
}

// Set stores val under key with the default expiration.
func (c *ExpiringCache[V]) Set(key string, val V) bool {
	c.setMu.Lock()
	defer c.setMu.Unlock()
	if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxEntries {
		// ItemCount includes expired entries that have not been purged yet.
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxEntries {
			return false
		}
	}
	c.cache.SetDefault(key, val)
	return true
}

// Delete removes key from the cache.
func (c *ExpiringCache[V]) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes every entry.
func (c *ExpiringCache[V]) Clear() {
	c.cache.Flush()
}

// Len returns the number of entries, including expired entries that have not
// been purged yet.
func (c *ExpiringCache[V]) Len() int {
	return c.cache.ItemCount()
}

// MaxCapacity returns the maximum number of entries.
func (c *ExpiringCache[V]) MaxCapacity() int {
	return c.maxEntries
}
