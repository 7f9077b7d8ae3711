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

package engine

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"vitess.io/regexudf/go/cache"
	"vitess.io/regexudf/go/log"
)

// CachedEngine shares compiled programs between scratchpads. Programs it
// hands out are already studied, so Study on them is a no-op, and Compile can
// return a *StudyError.
type CachedEngine struct {
	inner    Engine
	programs cache.Cache[Program]
	study    bool
	hits     prometheus.Counter
	group    singleflight.Group
}

var _ Engine = (*CachedEngine)(nil)

// NewCachedEngine wraps inner with the program cache programs. When study is
// set, programs are studied before they are stored. hits, if not nil, counts
// cache hits.
func NewCachedEngine(inner Engine, programs cache.Cache[Program], study bool, hits prometheus.Counter) *CachedEngine {
	return &CachedEngine{
		inner:    inner,
		programs: programs,
		study:    study,
		hits:     hits,
	}
}

func (c *CachedEngine) Name() string {
	return c.inner.Name()
}

func cacheKey(pattern string) string {
	return strconv.FormatUint(xxhash.Sum64String(pattern), 16)
}

// Compile returns the shared program for pattern, compiling it on a miss.
// Concurrent misses on the same pattern compile it once.
func (c *CachedEngine) Compile(pattern string) (Program, error) {
	key := cacheKey(pattern)
	// Keys are hashes, so the pattern is compared as well.
	if p, ok := c.programs.Get(key); ok && p.Pattern() == pattern {
		if c.hits != nil {
			c.hits.Inc()
		}
		log.DebugS("shared program cache hit", "engine", c.inner.Name(), "pattern", pattern)
		return p, nil
	}

	v, err, _ := c.group.Do(pattern, func() (any, error) {
		p, err := c.inner.Compile(pattern)
		if err != nil {
			return nil, err
		}
		if c.study {
			if err := c.inner.Study(p); err != nil {
				return nil, err
			}
		}
		sp := &sharedProgram{Program: p}
		if !c.programs.Set(key, sp) {
			log.DebugS("shared program cache full", "engine", c.inner.Name(), "entries", c.programs.Len())
		}
		return sp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Program), nil
}

// Study studies programs that did not come from the cache.
func (c *CachedEngine) Study(p Program) error {
	if _, ok := p.(*sharedProgram); ok {
		return nil
	}
	return c.inner.Study(p)
}

// Purge drops every shared program.
func (c *CachedEngine) Purge() {
	c.programs.Clear()
}

type sharedProgram struct {
	Program
}
