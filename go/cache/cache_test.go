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
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewDefaultCacheImpl(t *testing.T) {
	assertNullCache := func(t *testing.T, cache Cache[string]) {
		_, ok := cache.(*nullCache[string])
		require.True(t, ok)
	}

	assertExpiringCache := func(t *testing.T, cache Cache[string]) {
		_, ok := cache.(*ExpiringCache[string])
		require.True(t, ok)
	}

	tests := []struct {
		cfg    *Config
		verify func(t *testing.T, cache Cache[string])
	}{
		{nil, assertNullCache},
		{&Config{MaxEntries: 0}, assertNullCache},
		{&Config{MaxEntries: -1, DefaultExpiration: time.Minute}, assertNullCache},
		{&Config{MaxEntries: 100}, assertExpiringCache},
		{&Config{MaxEntries: 100, DefaultExpiration: time.Minute}, assertExpiringCache},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.cfg != nil {
			name = fmt.Sprintf("%d.%v", tt.cfg.MaxEntries, tt.cfg.DefaultExpiration)
		}
		t.Run(name, func(t *testing.T) {
			tt.verify(t, NewDefaultCacheImpl[string](tt.cfg))
		})
	}
}

func TestNullCache(t *testing.T) {
	c := NewDefaultCacheImpl[int](nil)
	assert.False(t, c.Set("a", 1))
	_, ok := c.Get("a")
	assert.False(t, ok)
	c.Delete("a")
	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.MaxCapacity())
}

func TestExpiringCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewExpiringCache[string](&Config{MaxEntries: 2})
	require.True(t, c.Set("a", "1"))
	require.True(t, c.Set("b", "2"))
	assert.False(t, c.Set("c", "3"), "cache is full")
	assert.True(t, c.Set("a", "10"), "overwriting an existing key is always allowed")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "10", v)
	_, ok = c.Get("c")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.MaxCapacity())

	c.Delete("a")
	assert.True(t, c.Set("c", "3"))
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestExpiringCacheExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewExpiringCache[int](&Config{MaxEntries: 1, DefaultExpiration: 10 * time.Millisecond})
	require.True(t, c.Set("a", 1))
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.True(t, c.Set("b", 2), "expired entries are purged to make room")
	assert.Equal(t, 1, c.Len())
}

func TestExpiringCacheConcurrentSetRespectsBound(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewExpiringCache[int](&Config{MaxEntries: 4})
	var (
		wg     sync.WaitGroup
		stored atomic.Int64
	)
	for i := range 64 {
		wg.Go(func() {
			if c.Set(fmt.Sprintf("k%d", i), i) {
				stored.Add(1)
			}
		})
	}
	wg.Wait()
	assert.EqualValues(t, 4, stored.Load())
	assert.Equal(t, 4, c.Len())
}
