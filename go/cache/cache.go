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

// Package cache provides the caches used to share compiled objects between
// independent invocation sequences.
package cache

import "time"

// Cache is a generic interface type for a data structure that keeps recently used
// objects in memory and evicts them when they expire.
type Cache[V any] interface {
	Get(key string) (V, bool)
	// Set stores val under key. It returns false when the cache is full and
	// the value was not stored.
	Set(key string, val V) bool

	Delete(key string)
	Clear()

	Len() int
	MaxCapacity() int
}

// Config is the configuration options for a cache instance.
type Config struct {
	// MaxEntries is the maximum number of entries kept in the cache. A value of
	// zero disables caching.
	MaxEntries int
	// DefaultExpiration is how long an entry is kept after it is stored. Zero
	// or a negative value keeps entries until they are deleted.
	DefaultExpiration time.Duration
	// CleanupInterval is how often expired entries are purged. Zero disables
	// the background purge; expired entries are then dropped on access.
	CleanupInterval time.Duration
}

// NewDefaultCacheImpl returns the default cache implementation, which at the
// moment is an expiring map bounded by MaxEntries.
func NewDefaultCacheImpl[V any](cfg *Config) Cache[V] {
	if cfg == nil || cfg.MaxEntries <= 0 {
		return &nullCache[V]{}
	}
	return NewExpiringCache[V](cfg)
}
